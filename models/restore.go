// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package models

import "time"

// CacheControl carries the caller's cache directives for a restore.
type CacheControl struct {
	// Force regenerates the payload even when a cached copy exists.
	Force bool
	// Overwrite stores the regenerated payload over the cached copy.
	Overwrite bool
	// Skip bypasses the cache entirely, in both directions.
	Skip bool
}

// RestoreRequest is everything the orchestrator needs to produce a payload
// for one device. PriorStateID empty means an initial restore; otherwise an
// incremental restore against that checkpoint, with StateHash carrying the
// device's own fingerprint for validation.
type RestoreRequest struct {
	Domain      string
	UserID      string
	DeviceID    string
	PriorStateID string
	StateHash   string
	Version     string
	Cache       CacheControl
	// Async requests dispatch to the background queue instead of inline
	// generation when no cached payload is available.
	Async bool
}

// Initial reports whether the request starts from scratch.
func (r RestoreRequest) Initial() bool {
	return r.PriorStateID == ""
}

// RestorePayload is a fully generated restore document together with the
// checkpoint it corresponds to.
type RestorePayload struct {
	StateID     string        `json:"state_id"`
	StateHash   string        `json:"state_hash"`
	Body        []byte        `json:"body"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`

	// FromCache marks a payload served without regeneration. Not persisted.
	FromCache bool `json:"-"`
}

// RestorePending tells the caller a background generation is in flight and
// when to poll again.
type RestorePending struct {
	TaskID     string
	RetryAfter time.Duration
}

// RestoreResult is the outcome of a restore call: exactly one of Payload or
// Pending is set.
type RestoreResult struct {
	Payload *RestorePayload
	Pending *RestorePending
}

// CheckpointInfo is a read-only summary of a device's newest checkpoint. It
// lets support staff recover the state id for a device that lost it.
type CheckpointInfo struct {
	StateID         string    `json:"state_id"`
	PreviousStateID string    `json:"previous_state_id,omitempty"`
	StateHash       string    `json:"state_hash"`
	CaseCount       int       `json:"case_count"`
	CreatedAt       time.Time `json:"created_at"`
	LastSubmittedAt time.Time `json:"last_submitted_at,omitzero"`
	HadStateError   bool      `json:"had_state_error,omitempty"`
}
