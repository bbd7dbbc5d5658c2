// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/models"
)

func newTestSyncStateRepo(t *testing.T) (*syncStateRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &syncStateRepository{
		db: &DB{
			DB:                 db,
			logger:             l,
			errorClassificator: NewPostgresErrorClassifier(),
		},
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func testState() *models.SyncState {
	state := models.NewSyncState("test-domain", "user-1", "device-1", []string{"owner"})
	state.CaseIDsOnPhone.Add("case-a")
	return state
}

func TestSave_Success(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	state := testState()
	mock.ExpectExec("INSERT INTO sync_states").
		WithArgs(
			state.ID, state.Domain, state.UserID, state.DeviceID,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			false, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSave_NoRowsAffected(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO sync_states").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), testState())
	if !errors.Is(err, ErrSyncStateNotSaved) {
		t.Fatalf("expected ErrSyncStateNotSaved, got %v", err)
	}
}

func TestSave_NonRetryableErrorFailsFast(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO sync_states").
		WillReturnError(pgError(pgerrcode.NotNullViolation))

	err := repo.Save(context.Background(), testState())
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSave_RetryableErrorIsRetried(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO sync_states").
		WillReturnError(pgError(pgerrcode.DeadlockDetected))
	mock.ExpectExec("INSERT INTO sync_states").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), testState()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGet_Success(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	state := testState()
	doc, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mock.ExpectQuery("SELECT doc").
		WithArgs(state.ID).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(doc))

	loaded, err := repo.Get(context.Background(), state.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.ID != state.ID {
		t.Errorf("expected id %s, got %s", state.ID, loaded.ID)
	}
	if !loaded.CaseIDsOnPhone.Has("case-a") {
		t.Errorf("expected footprint to contain case-a")
	}
	if !loaded.StateHash().Equal(state.StateHash()) {
		t.Errorf("state hash changed through persistence")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT doc").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrSyncStateNotFound) {
		t.Fatalf("expected ErrSyncStateNotFound, got %v", err)
	}
}

func TestGet_BadDocument(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT doc").
		WithArgs("state-1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow([]byte("{not json")))

	_, err := repo.Get(context.Background(), "state-1")
	if !errors.Is(err, ErrDecodingDocument) {
		t.Fatalf("expected ErrDecodingDocument, got %v", err)
	}
}

func TestLastForDevice_Success(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	state := testState()
	doc, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mock.ExpectQuery("SELECT doc FROM sync_states").
		WithArgs(state.DeviceID, state.Domain, state.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(doc))

	loaded, err := repo.LastForDevice(context.Background(), state.Domain, state.UserID, state.DeviceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.ID != state.ID {
		t.Errorf("expected id %s, got %s", state.ID, loaded.ID)
	}
}

func TestLastForDevice_NeverSynced(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT doc FROM sync_states").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LastForDevice(context.Background(), "d", "u", "dev")
	if !errors.Is(err, ErrSyncStateNotFound) {
		t.Fatalf("expected ErrSyncStateNotFound, got %v", err)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	repo, mock, db := newTestSyncStateRepo(t)
	defer db.Close()

	cutoff := time.Now().Add(-60 * 24 * time.Hour)
	mock.ExpectExec("DELETE FROM sync_states").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 7 {
		t.Errorf("expected 7 deleted rows, got %d", deleted)
	}
}
