// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/models"
)

const (
	saveAttempts  = 3
	retryInterval = 200 * time.Millisecond
)

// syncStateRepository is the PostgreSQL-backed implementation of
// [SyncStateRepository]. The scalar columns of the "sync_states" table exist
// for lookups and retention; the document itself travels as JSONB.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type syncStateRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSyncStateRepository constructs a [SyncStateRepository] backed by the
// provided database connection and logger.
//
// A debug-level log message is emitted at construction time to aid
// application startup diagnostics.
func NewSyncStateRepository(db *DB, logger *logger.Logger) SyncStateRepository {
	logger.Debug().Msg("creating sync state repository")
	return &syncStateRepository{
		db:     db,
		logger: logger,
	}
}

// Save upserts the state document and its lookup columns.
//
// Transient driver failures (connection loss, deadlock rollback) are retried
// up to [saveAttempts] times as decided by the database's error classifier;
// everything else fails immediately.
func (r *syncStateRepository) Save(ctx context.Context, state *models.SyncState) error {
	log := logger.FromContext(ctx)

	doc, err := json.Marshal(state)
	if err != nil {
		log.Err(err).Str("func", "*syncStateRepository.Save").Msg("error: document encoding failed")
		return fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}

	var lastErr error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		res, execErr := r.db.ExecContext(ctx, upsertSyncState,
			state.ID,
			state.Domain,
			state.UserID,
			state.DeviceID,
			nullString(state.PreviousStateID),
			state.CreatedAt,
			nullTime(state.LastSubmittedAt),
			state.HadStateError,
			nullTime(state.ErrorDate),
			nullString(state.ErrorHash),
			doc,
		)
		if execErr == nil {
			affected, raErr := res.RowsAffected()
			if raErr != nil {
				return raErr
			}
			if affected == 0 {
				return ErrSyncStateNotSaved
			}
			return nil
		}

		lastErr = execErr
		if r.db.errorClassificator.Classify(execErr) != Retryable {
			break
		}
		log.Warn().Err(execErr).
			Str("func", "*syncStateRepository.Save").
			Int("attempt", attempt).
			Msg("retryable DB error, retrying save")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval * time.Duration(attempt)):
		}
	}

	log.Err(lastErr).Str("func", "*syncStateRepository.Save").Msg("error: saving sync state failed")
	return fmt.Errorf("%w: %w", ErrExecutingStatement, lastErr)
}

// Get loads the state document with the given id.
//
// Error handling:
//   - sql.ErrNoRows → [ErrSyncStateNotFound].
//   - Scan failure → wrapped as [ErrScanningRow].
//   - Undecodable document → wrapped as [ErrDecodingDocument].
func (r *syncStateRepository) Get(ctx context.Context, stateID string) (*models.SyncState, error) {
	log := logger.FromContext(ctx)

	var doc []byte
	if err := r.db.QueryRowContext(ctx, getSyncState, stateID).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSyncStateNotFound
		}
		log.Err(err).Str("func", "*syncStateRepository.Get").Msg("error: scanning error")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return decodeSyncState(doc)
}

// LastForDevice loads the most recently created state for the given domain,
// user and device.
func (r *syncStateRepository) LastForDevice(ctx context.Context, domain, userID, deviceID string) (*models.SyncState, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildLastForDeviceQuery(domain, userID, deviceID)
	if err != nil {
		log.Err(err).Str("func", "*syncStateRepository.LastForDevice").Msg("error: building query failed")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var doc []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSyncStateNotFound
		}
		log.Err(err).Str("func", "*syncStateRepository.LastForDevice").Msg("error: scanning error")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return decodeSyncState(doc)
}

// DeleteOlderThan removes superseded states created before cutoff and
// returns the number of deleted rows.
func (r *syncStateRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteOlderThanQuery(cutoff)
	if err != nil {
		log.Err(err).Str("func", "*syncStateRepository.DeleteOlderThan").Msg("error: building query failed")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*syncStateRepository.DeleteOlderThan").Msg("error: executing delete failed")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("retention sweep deleted sync states")
	return deleted, nil
}

func decodeSyncState(doc []byte) (*models.SyncState, error) {
	var state models.SyncState
	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
	}
	state.Normalize()
	return &state, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
