// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldsync/casesync/internal/logger"
)

// fixtureRepository serves the reference data documents stored in the
// "fixtures" table: domain-wide rows plus rows scoped to one user.
type fixtureRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewFixtureRepository constructs a [FixtureRepository] backed by the
// provided database connection and logger.
func NewFixtureRepository(db *DB, logger *logger.Logger) FixtureRepository {
	logger.Debug().Msg("creating fixture repository")
	return &fixtureRepository{
		db:     db,
		logger: logger,
	}
}

func (r *fixtureRepository) Fixtures(ctx context.Context, domain, userID string) ([]json.RawMessage, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFixturesQuery(domain, userID)
	if err != nil {
		log.Err(err).Str("func", "*fixtureRepository.Fixtures").Msg("error: building query failed")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*fixtureRepository.Fixtures").Msg("error: executing query failed")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var fixtures []json.RawMessage
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		fixtures = append(fixtures, json.RawMessage(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return fixtures, nil
}
