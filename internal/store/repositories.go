// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

// Repositories bundles every repository the service layer consumes, so
// wiring at startup passes a single value around.
type Repositories struct {
	SyncStates SyncStateRepository
	Cases      CaseRepository
	Fixtures   FixtureRepository
}

// NewRepositories constructs the repository bundle over one database
// connection.
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		SyncStates: NewSyncStateRepository(db, db.logger),
		Cases:      NewCaseRepository(db, db.logger),
		Fixtures:   NewFixtureRepository(db, db.logger),
	}
}
