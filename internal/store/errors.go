// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrSyncStateNotFound is returned when a lookup targets a sync state
	// (by id, or by domain/user/device for the latest) that does not exist
	// in the database.
	ErrSyncStateNotFound = errors.New("sync state was not found")

	// ErrSyncStateNotSaved is returned when an upsert completes without a
	// driver error but the number of affected rows is zero, indicating
	// that nothing was actually persisted.
	ErrSyncStateNotSaved = errors.New("sync state was not saved")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan sync state row")

	// ErrEncodingDocument is returned when the sync state document cannot
	// be serialized for the JSONB column.
	ErrEncodingDocument = errors.New("failed to encode sync state document")

	// ErrDecodingDocument is returned when the JSONB column holds a
	// document the current code cannot deserialize.
	ErrDecodingDocument = errors.New("failed to decode sync state document")
)
