// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package workers

import "context"

// Workers aggregates background workers and runs them together.
type Workers struct {
	workers []Worker
}

// New bundles the given workers.
func New(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every worker in its own goroutine and returns immediately.
// The workers stop when ctx is cancelled.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		go worker.Run(ctx)
	}
}
