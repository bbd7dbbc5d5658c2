// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fieldsync/casesync/models"
)

// SyncStateRepository is the persistence boundary for sync state documents.
//
// A state is stored as a handful of scalar columns used for lookups plus the
// full document as JSONB, so the purge algorithms never need to be expressed
// in SQL.
type SyncStateRepository interface {
	// Save upserts the state. Saving an id that already exists replaces
	// the stored document; the restore pipeline uses this to stamp audit
	// fields on an existing checkpoint.
	Save(ctx context.Context, state *models.SyncState) error

	// Get loads the state with the given id.
	// Returns ErrSyncStateNotFound if no such state exists.
	Get(ctx context.Context, stateID string) (*models.SyncState, error)

	// LastForDevice loads the most recently created state for the given
	// domain, user and device.
	// Returns ErrSyncStateNotFound if the device has never synced.
	LastForDevice(ctx context.Context, domain, userID, deviceID string) (*models.SyncState, error)

	// DeleteOlderThan removes states created before cutoff that are not
	// the newest state of their device, and returns how many were
	// deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CaseRepository reads the authoritative case records the restore engine
// syncs from. It satisfies the service layer's case oracle.
type CaseRepository interface {
	// OwnerIDs returns the user's own id plus every ownership id
	// registered for it (groups, locations).
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

	// UpdatesSince returns every case update in the domain submitted
	// after since, in submission order.
	UpdatesSince(ctx context.Context, domain string, ownerIDs []string, since time.Time) ([]models.CaseUpdate, error)
}

// FixtureRepository reads the reference data documents shipped alongside a
// restore payload.
type FixtureRepository interface {
	Fixtures(ctx context.Context, domain, userID string) ([]json.RawMessage, error)
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
