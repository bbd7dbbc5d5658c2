// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fieldsync/casesync/internal/workers"
	"github.com/fieldsync/casesync/models"
)

// RestoreService produces restore payloads: the complete document a device
// applies to rebuild its local case database.
type RestoreService interface {
	// Restore handles one restore request end to end: checkpoint
	// validation, cache lookup, payload generation or async dispatch.
	// Exactly one of the result's Payload or Pending fields is set on
	// success.
	Restore(ctx context.Context, req models.RestoreRequest) (models.RestoreResult, error)

	// Checkpoint summarizes the newest sync state recorded for a device,
	// regardless of whether the device still knows its state id.
	Checkpoint(ctx context.Context, domain, userID, deviceID string) (models.CheckpointInfo, error)
}

// CaseOracle answers questions about the current case universe. It is backed
// by the case-processing side of the platform, which owns the authoritative
// case records.
type CaseOracle interface {
	// OwnerIDs returns every ownership id the user syncs as: the user id
	// itself plus its group and location ids.
	OwnerIDs(ctx context.Context, domain, userID string) ([]string, error)

	// OwnedCases returns a snapshot of every case, open or closed, whose
	// owner is one of the given ids.
	OwnedCases(ctx context.Context, domain string, ownerIDs []string) ([]models.CaseSnapshot, error)

	// CaseSnapshots returns snapshots for specific case ids. Unknown ids
	// are silently absent from the result.
	CaseSnapshots(ctx context.Context, domain string, caseIDs []string) ([]models.CaseSnapshot, error)

	// Extensions returns the cases holding an extension index into any of
	// the given case ids.
	Extensions(ctx context.Context, domain string, caseIDs []string) ([]models.CaseSnapshot, error)

	// UpdatesSince returns every case update relevant to the given owners
	// submitted after since, in submission order.
	UpdatesSince(ctx context.Context, domain string, ownerIDs []string, since time.Time) ([]models.CaseUpdate, error)
}

// FixtureSource supplies the reference data elements (lookup tables,
// organization structure) that ride along in a restore payload.
type FixtureSource interface {
	Fixtures(ctx context.Context, domain, userID string) ([]json.RawMessage, error)
}

// TaskQueue is the slice of the background queue the restore pipeline needs.
// Satisfied by [workers.Queue].
type TaskQueue interface {
	Submit(taskID string, job workers.Job) error
	Wait(ctx context.Context, taskID string, wait time.Duration) (workers.TaskStatus, error)
	Forget(taskID string)
}

// PayloadProvider contributes one named section to a restore document.
// Providers run in registration order. A nil body skips the section.
type PayloadProvider interface {
	Name() string
	Contribute(ctx context.Context, build *PayloadBuild) (json.RawMessage, error)
}

// PayloadBuild carries everything providers need to render their section.
type PayloadBuild struct {
	Request models.RestoreRequest
	State   *models.SyncState
	// Updates is the batch folded into State on an incremental restore;
	// empty on an initial restore.
	Updates []models.CaseUpdate
	Version string
}
