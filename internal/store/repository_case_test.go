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

	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/models"
)

func newTestCaseRepo(t *testing.T) (*caseRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &caseRepository{
		db: &DB{
			DB:                 db,
			logger:             l,
			errorClassificator: NewPostgresErrorClassifier(),
		},
		logger: l,
	}
	return repo, mock, db
}

func snapshotDoc(t *testing.T, snap models.CaseSnapshot) []byte {
	doc, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}
	return doc
}

func TestOwnerIDs_IncludesUserID(t *testing.T) {
	repo, mock, db := newTestCaseRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT owner_id FROM user_owner_ids").
		WithArgs("d", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).
			AddRow("group-1").
			AddRow("location-1"))

	owners, err := repo.OwnerIDs(context.Background(), "d", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"user-1", "group-1", "location-1"}
	if len(owners) != len(want) {
		t.Fatalf("expected %v, got %v", want, owners)
	}
	for i := range want {
		if owners[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, owners)
		}
	}
}

func TestOwnedCases_DecodesDocuments(t *testing.T) {
	repo, mock, db := newTestCaseRepo(t)
	defer db.Close()

	snap := models.CaseSnapshot{CaseID: "case-1", Type: "patient", OwnerID: "owner-1"}
	mock.ExpectQuery("SELECT doc FROM cases").
		WithArgs("d", "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(snapshotDoc(t, snap)))

	cases, err := repo.OwnedCases(context.Background(), "d", []string{"owner-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 || cases[0].CaseID != "case-1" || cases[0].OwnerID != "owner-1" {
		t.Fatalf("unexpected cases: %+v", cases)
	}
}

func TestOwnedCases_NoOwnersSkipsQuery(t *testing.T) {
	repo, mock, db := newTestCaseRepo(t)
	defer db.Close()

	cases, err := repo.OwnedCases(context.Background(), "d", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cases != nil {
		t.Fatalf("expected nil, got %+v", cases)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCaseSnapshots_UnknownIDsAbsent(t *testing.T) {
	repo, mock, db := newTestCaseRepo(t)
	defer db.Close()

	snap := models.CaseSnapshot{CaseID: "case-1"}
	mock.ExpectQuery("SELECT doc FROM cases").
		WithArgs("case-1", "ghost", "d").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(snapshotDoc(t, snap)))

	cases, err := repo.CaseSnapshots(context.Background(), "d", []string{"case-1", "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 || cases[0].CaseID != "case-1" {
		t.Fatalf("unexpected cases: %+v", cases)
	}
}

func TestExtensions_QueriesReverseEdges(t *testing.T) {
	repo, mock, db := newTestCaseRepo(t)
	defer db.Close()

	snap := models.CaseSnapshot{
		CaseID: "ext-1",
		Indices: []models.CaseIndex{{
			CaseID: "ext-1", Identifier: "host",
			ReferencedID: "host-1", Relationship: models.RelationshipExtension,
		}},
	}
	mock.ExpectQuery("SELECT c.doc FROM cases c JOIN case_indices i").
		WithArgs("d", "host-1", "extension").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(snapshotDoc(t, snap)))

	cases, err := repo.Extensions(context.Background(), "d", []string{"host-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 || cases[0].CaseID != "ext-1" {
		t.Fatalf("unexpected cases: %+v", cases)
	}
}

func TestUpdatesSince_SubmissionOrder(t *testing.T) {
	repo, mock, db := newTestCaseRepo(t)
	defer db.Close()

	first, _ := json.Marshal(models.CaseUpdate{
		CaseID:  "case-1",
		Actions: []models.CaseAction{{Type: models.ActionCreate, OwnerID: models.OwnerOf("owner-1")}},
	})
	second, _ := json.Marshal(models.CaseUpdate{
		CaseID:  "case-1",
		Actions: []models.CaseAction{{Type: models.ActionClose}},
	})

	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT doc FROM case_transactions").
		WithArgs("d", since).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(first).AddRow(second))

	updates, err := repo.UpdatesSince(context.Background(), "d", []string{"owner-1"}, since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Actions[0].Type != models.ActionCreate || updates[1].Actions[0].Type != models.ActionClose {
		t.Fatalf("updates out of order: %+v", updates)
	}
}

func TestUpdatesSince_UndecodableDocument(t *testing.T) {
	repo, mock, db := newTestCaseRepo(t)
	defer db.Close()

	since := time.Now()
	mock.ExpectQuery("SELECT doc FROM case_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow([]byte("not json")))

	_, err := repo.UpdatesSince(context.Background(), "d", nil, since)
	if !errors.Is(err, ErrDecodingDocument) {
		t.Fatalf("expected ErrDecodingDocument, got %v", err)
	}
}

func TestFixtures(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	l := logger.Nop()
	repo := &fixtureRepository{
		db:     &DB{DB: db, logger: l, errorClassificator: NewPostgresErrorClassifier()},
		logger: l,
	}

	mock.ExpectQuery("SELECT doc FROM fixtures").
		WithArgs("d", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"name":"lookup-1"}`)).
			AddRow([]byte(`{"name":"user-own"}`)))

	fixtures, err := repo.Fixtures(context.Background(), "d", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(fixtures))
	}
}
