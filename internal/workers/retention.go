// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package workers

import (
	"context"
	"time"

	"github.com/fieldsync/casesync/internal/logger"
)

// StateDeleter is the slice of the sync state repository the sweeper needs.
type StateDeleter interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionSweeper periodically deletes superseded sync states older than
// the retention window. It implements [Worker].
type RetentionSweeper struct {
	logger   *logger.Logger
	states   StateDeleter
	window   time.Duration
	interval time.Duration
}

// NewRetentionSweeper constructs a sweeper deleting states older than
// window, running every interval.
func NewRetentionSweeper(states StateDeleter, window, interval time.Duration, log *logger.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		logger:   log,
		states:   states,
		window:   window,
		interval: interval,
	}
}

// Run sweeps on every tick until ctx is cancelled. The first sweep happens
// after one full interval, so startup is never delayed by a large backlog.
func (w *RetentionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionSweeper) sweep(ctx context.Context) {
	ctx = w.logger.WithContext(ctx)
	cutoff := time.Now().Add(-w.window)
	deleted, err := w.states.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Err(err).Time("cutoff", cutoff).Msg("retention sweep failed")
		return
	}
	if deleted > 0 {
		w.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("retention sweep completed")
	}
}
