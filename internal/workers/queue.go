// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fieldsync/casesync/internal/config"
	"github.com/fieldsync/casesync/internal/logger"
)

// TaskStatus is the lifecycle state of a submitted task.
type TaskStatus int

const (
	// TaskRunning means the task is queued or currently executing.
	TaskRunning TaskStatus = iota
	// TaskDone means the task finished without error.
	TaskDone
	// TaskFailed means the task returned an error or panicked.
	TaskFailed
)

// Errors returned by [Queue.Submit] and [Queue.Wait].
var (
	// ErrTaskNotFound is returned when polling a task id the queue does
	// not know; the entry either never existed or was already swept.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskAlreadyRunning is returned when submitting a task id that is
	// still queued or executing. The existing run is kept.
	ErrTaskAlreadyRunning = errors.New("task is already running")

	// ErrQueueFull is returned when the queue's backlog is at capacity.
	ErrQueueFull = errors.New("task queue is full")
)

// Job is the unit of background work. The context it receives is the
// queue's run context, not the submitting request's, so an accepted job is
// never cancelled by its caller hanging up.
type Job func(ctx context.Context) error

type queuedTask struct {
	id  string
	job Job
}

type taskState struct {
	status     TaskStatus
	err        error
	done       chan struct{}
	finishedAt time.Time
}

// Queue runs submitted jobs on a fixed worker pool and keeps their results
// pollable for a bounded time. It implements [Worker]; nothing executes
// until Run is started.
type Queue struct {
	logger          *logger.Logger
	jobs            chan queuedTask
	poolSize        int
	resultTTL       time.Duration
	janitorInterval time.Duration

	mu    sync.Mutex
	tasks map[string]*taskState
}

// NewQueue constructs a queue sized by cfg.
func NewQueue(cfg config.Workers, log *logger.Logger) *Queue {
	return &Queue{
		logger:          log,
		jobs:            make(chan queuedTask, cfg.QueueCapacity),
		poolSize:        cfg.PoolSize,
		resultTTL:       cfg.ResultTTL,
		janitorInterval: time.Minute,
		tasks:           make(map[string]*taskState),
	}
}

// Submit enqueues job under taskID. A task id with a run still in flight is
// rejected with [ErrTaskAlreadyRunning]; a finished entry under the same id
// is replaced.
func (q *Queue) Submit(taskID string, job Job) error {
	q.mu.Lock()
	if existing, ok := q.tasks[taskID]; ok && existing.status == TaskRunning {
		q.mu.Unlock()
		return ErrTaskAlreadyRunning
	}
	state := &taskState{status: TaskRunning, done: make(chan struct{})}
	q.tasks[taskID] = state
	q.mu.Unlock()

	select {
	case q.jobs <- queuedTask{id: taskID, job: job}:
		return nil
	default:
		q.mu.Lock()
		delete(q.tasks, taskID)
		q.mu.Unlock()
		return ErrQueueFull
	}
}

// Wait blocks until the task finishes, the wait elapses, or ctx is
// cancelled, and returns the task's status at that moment. For a failed
// task the job's error is returned alongside [TaskFailed].
func (q *Queue) Wait(ctx context.Context, taskID string, wait time.Duration) (TaskStatus, error) {
	q.mu.Lock()
	state, ok := q.tasks[taskID]
	q.mu.Unlock()
	if !ok {
		return TaskFailed, ErrTaskNotFound
	}

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-state.done:
		case <-timer.C:
		case <-ctx.Done():
			return TaskRunning, ctx.Err()
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if state.status == TaskFailed {
		return TaskFailed, state.err
	}
	return state.status, nil
}

// Forget drops a finished task entry. Forgetting a running task is a no-op;
// the janitor would eventually sweep the entry anyway.
func (q *Queue) Forget(taskID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if state, ok := q.tasks[taskID]; ok && state.status != TaskRunning {
		delete(q.tasks, taskID)
	}
}

// Run starts the worker pool and the result janitor and blocks until ctx is
// cancelled.
func (q *Queue) Run(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < q.poolSize; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case task := <-q.jobs:
					q.execute(ctx, task)
				}
			}
		})
	}
	g.Go(func() error {
		q.janitor(ctx)
		return nil
	})
	_ = g.Wait()
}

func (q *Queue) execute(ctx context.Context, task queuedTask) {
	started := time.Now()
	err := runSafely(ctx, task.job)

	q.mu.Lock()
	state := q.tasks[task.id]
	if state != nil {
		state.err = err
		state.finishedAt = time.Now()
		if err != nil {
			state.status = TaskFailed
		} else {
			state.status = TaskDone
		}
		close(state.done)
	}
	q.mu.Unlock()

	event := q.logger.Info()
	if err != nil {
		event = q.logger.Err(err)
	}
	event.Str("task_id", task.id).Dur("duration", time.Since(started)).Msg("background task finished")
}

func runSafely(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return job(ctx)
}

func (q *Queue) janitor(ctx context.Context) {
	ticker := time.NewTicker(q.janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-q.resultTTL)
			q.mu.Lock()
			for id, state := range q.tasks {
				if state.status != TaskRunning && state.finishedAt.Before(cutoff) {
					delete(q.tasks, id)
				}
			}
			q.mu.Unlock()
		}
	}
}
