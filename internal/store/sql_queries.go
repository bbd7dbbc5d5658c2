// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

const (
	upsertSyncState = `INSERT INTO sync_states (
		sync_state_id,
		domain,
		user_id,
		device_id,
		previous_state_id,
		created_at,
		last_submitted_at,
		had_state_error,
		error_date,
		error_hash,
		doc
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (sync_state_id) DO UPDATE SET
		last_submitted_at = EXCLUDED.last_submitted_at,
		had_state_error   = EXCLUDED.had_state_error,
		error_date        = EXCLUDED.error_date,
		error_hash        = EXCLUDED.error_hash,
		doc               = EXCLUDED.doc;`

	getSyncState = `SELECT doc
		FROM sync_states
		WHERE sync_state_id = $1;`
)

// psql builds dynamic queries with PostgreSQL-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildLastForDeviceQuery selects the document of the newest state for one
// domain/user/device triple.
func buildLastForDeviceQuery(domain, userID, deviceID string) (string, []any, error) {
	return psql.
		Select("doc").
		From("sync_states").
		Where(sq.Eq{
			"domain":    domain,
			"user_id":   userID,
			"device_id": deviceID,
		}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
}

// buildOwnerIDsQuery selects the extra ownership ids (groups, locations) a
// user syncs as. The user's own id is not stored in the table.
func buildOwnerIDsQuery(domain, userID string) (string, []any, error) {
	return psql.
		Select("owner_id").
		From("user_owner_ids").
		Where(sq.Eq{
			"domain":  domain,
			"user_id": userID,
		}).
		OrderBy("owner_id").
		ToSql()
}

// buildOwnedCasesQuery selects the case documents owned by any of the ids.
func buildOwnedCasesQuery(domain string, ownerIDs []string) (string, []any, error) {
	return psql.
		Select("doc").
		From("cases").
		Where(sq.Eq{
			"domain":   domain,
			"owner_id": ownerIDs,
		}).
		OrderBy("case_id").
		ToSql()
}

// buildCaseSnapshotsQuery selects the case documents with the given ids.
func buildCaseSnapshotsQuery(domain string, caseIDs []string) (string, []any, error) {
	return psql.
		Select("doc").
		From("cases").
		Where(sq.Eq{
			"domain":  domain,
			"case_id": caseIDs,
		}).
		OrderBy("case_id").
		ToSql()
}

// buildExtensionCasesQuery selects the documents of cases holding an
// extension index into any of the given ids.
func buildExtensionCasesQuery(domain string, caseIDs []string) (string, []any, error) {
	return psql.
		Select("c.doc").
		From("cases c").
		Join("case_indices i ON i.domain = c.domain AND i.case_id = c.case_id").
		Where(sq.Eq{
			"c.domain":        domain,
			"i.relationship":  "extension",
			"i.referenced_id": caseIDs,
		}).
		OrderBy("c.case_id").
		ToSql()
}

// buildUpdatesSinceQuery selects every case transaction in the domain after
// since, in submission order.
func buildUpdatesSinceQuery(domain string, since time.Time) (string, []any, error) {
	return psql.
		Select("doc").
		From("case_transactions").
		Where(sq.Eq{"domain": domain}).
		Where(sq.Gt{"server_date": since}).
		OrderBy("id").
		ToSql()
}

// buildFixturesQuery selects the fixture documents visible to one user:
// domain-wide fixtures plus the user's own.
func buildFixturesQuery(domain, userID string) (string, []any, error) {
	return psql.
		Select("doc").
		From("fixtures").
		Where(sq.Eq{"domain": domain}).
		Where(sq.Or{
			sq.Eq{"user_id": nil},
			sq.Eq{"user_id": userID},
		}).
		OrderBy("name").
		ToSql()
}

// buildDeleteOlderThanQuery deletes states created before cutoff. The newest
// state of every device is kept regardless of age: it is the checkpoint the
// device will sync against next.
func buildDeleteOlderThanQuery(cutoff time.Time) (string, []any, error) {
	return psql.
		Delete("sync_states").
		Where(sq.Lt{"created_at": cutoff}).
		Where(`sync_state_id NOT IN (
			SELECT DISTINCT ON (domain, user_id, device_id) sync_state_id
			FROM sync_states
			ORDER BY domain, user_id, device_id, created_at DESC
		)`).
		ToSql()
}
