// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/models"
)

// caseRepository is the PostgreSQL-backed implementation of [CaseRepository].
// Case snapshots travel as JSONB documents; the scalar columns of "cases"
// and the "case_indices" table exist for the lookups the restore pipeline
// needs (ownership, reverse extension edges).
type caseRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCaseRepository constructs a [CaseRepository] backed by the provided
// database connection and logger.
func NewCaseRepository(db *DB, logger *logger.Logger) CaseRepository {
	logger.Debug().Msg("creating case repository")
	return &caseRepository{
		db:     db,
		logger: logger,
	}
}

// OwnerIDs returns the user's id plus its registered ownership ids.
func (r *caseRepository) OwnerIDs(ctx context.Context, domain, userID string) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildOwnerIDsQuery(domain, userID)
	if err != nil {
		log.Err(err).Str("func", "*caseRepository.OwnerIDs").Msg("error: building query failed")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*caseRepository.OwnerIDs").Msg("error: executing query failed")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	owners := []string{userID}
	for rows.Next() {
		var ownerID string
		if err := rows.Scan(&ownerID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if ownerID != userID {
			owners = append(owners, ownerID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return owners, nil
}

func (r *caseRepository) OwnedCases(ctx context.Context, domain string, ownerIDs []string) ([]models.CaseSnapshot, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	query, args, err := buildOwnedCasesQuery(domain, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.queryCases(ctx, "OwnedCases", query, args)
}

func (r *caseRepository) CaseSnapshots(ctx context.Context, domain string, caseIDs []string) ([]models.CaseSnapshot, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}
	query, args, err := buildCaseSnapshotsQuery(domain, caseIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.queryCases(ctx, "CaseSnapshots", query, args)
}

func (r *caseRepository) Extensions(ctx context.Context, domain string, caseIDs []string) ([]models.CaseSnapshot, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}
	query, args, err := buildExtensionCasesQuery(domain, caseIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.queryCases(ctx, "Extensions", query, args)
}

// UpdatesSince returns every transaction in the domain after since. The
// owner filter stays in the pipeline: updates for cases the user does not
// hold are dropped by the state fold, not by SQL.
func (r *caseRepository) UpdatesSince(ctx context.Context, domain string, _ []string, since time.Time) ([]models.CaseUpdate, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdatesSinceQuery(domain, since)
	if err != nil {
		log.Err(err).Str("func", "*caseRepository.UpdatesSince").Msg("error: building query failed")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*caseRepository.UpdatesSince").Msg("error: executing query failed")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var updates []models.CaseUpdate
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		var update models.CaseUpdate
		if err := json.Unmarshal(doc, &update); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
		}
		updates = append(updates, update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return updates, nil
}

func (r *caseRepository) queryCases(ctx context.Context, funcName, query string, args []any) ([]models.CaseSnapshot, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*caseRepository."+funcName).Msg("error: executing query failed")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var snapshots []models.CaseSnapshot
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		var snap models.CaseSnapshot
		if err := json.Unmarshal(doc, &snap); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return snapshots, nil
}
