// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

// Package workers provides the background machinery of the service: the
// task queue that runs restore generations off the request path, the
// retention sweeper that deletes superseded sync states, and a Workers
// aggregate that runs them in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution and
// blocks until ctx is cancelled.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) {
//	    // process until ctx.Done()
//	}
type Worker interface {
	Run(ctx context.Context)
}
