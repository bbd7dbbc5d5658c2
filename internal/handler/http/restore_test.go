// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package http

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/internal/mock"
	"github.com/fieldsync/casesync/internal/service"
	"github.com/fieldsync/casesync/models"
)

func newTestHandler(t *testing.T) (*mock.MockRestoreService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	restore := mock.NewMockRestoreService(ctrl)
	handler := NewHandler(&service.Services{Restore: restore}, "3.1.0", logger.Nop())
	return restore, handler.Init()
}

func TestRestorePayloadResponse(t *testing.T) {
	restore, router := newTestHandler(t)

	restore.EXPECT().Restore(gomock.Any(), gomock.Any()).Return(models.RestoreResult{
		Payload: &models.RestorePayload{
			StateID:   "state-1",
			StateHash: "ccsh:00ff",
			Body:      []byte(`{"state_id":"state-1"}`),
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/restore?domain=d&user_id=u", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "state-1", rec.Header().Get(headerStateID))
	assert.Equal(t, "ccsh:00ff", rec.Header().Get(headerStateHash))
	assert.Empty(t, rec.Header().Get(headerFromCache))
	assert.JSONEq(t, `{"state_id":"state-1"}`, rec.Body.String())
}

func TestRestoreCachedPayloadMarksHeader(t *testing.T) {
	restore, router := newTestHandler(t)

	restore.EXPECT().Restore(gomock.Any(), gomock.Any()).Return(models.RestoreResult{
		Payload: &models.RestorePayload{StateID: "state-1", Body: []byte(`{}`), FromCache: true},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/restore?domain=d&user_id=u", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(headerFromCache))
}

func TestRestoreGzipResponse(t *testing.T) {
	restore, router := newTestHandler(t)

	restore.EXPECT().Restore(gomock.Any(), gomock.Any()).Return(models.RestoreResult{
		Payload: &models.RestorePayload{StateID: "state-1", Body: []byte(`{"state_id":"state-1"}`)},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/restore?domain=d&user_id=u", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	gzipReader, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gzipReader)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state_id":"state-1"}`, string(body))
}

func TestRestorePendingResponse(t *testing.T) {
	restore, router := newTestHandler(t)

	restore.EXPECT().Restore(gomock.Any(), gomock.Any()).Return(models.RestoreResult{
		Pending: &models.RestorePending{TaskID: "task-1", RetryAfter: 10 * time.Second},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/restore?domain=d&user_id=u&async=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"task_id":"task-1","retry_after_seconds":10}`, rec.Body.String())
}

func TestRestoreErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no domain", service.ErrNoDomain, http.StatusBadRequest},
		{"no user", service.ErrNoUserID, http.StatusBadRequest},
		{"malformed hash", service.ErrMalformedStateHash, http.StatusBadRequest},
		{"missing checkpoint", service.ErrMissingCheckpoint, http.StatusNotFound},
		{"state mismatch", service.ErrStateMismatch, http.StatusPreconditionFailed},
		{"foreign checkpoint", service.ErrCheckpointOwnership, http.StatusForbidden},
		{"generation failure", service.ErrGenerationFailure, http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore, router := newTestHandler(t)
			restore.EXPECT().Restore(gomock.Any(), gomock.Any()).
				Return(models.RestoreResult{}, tt.err)

			req := httptest.NewRequest(http.MethodGet, "/api/restore", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRestoreQueryParsing(t *testing.T) {
	restore, router := newTestHandler(t)

	var got models.RestoreRequest
	restore.EXPECT().Restore(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.RestoreRequest) (models.RestoreResult, error) {
			got = req
			return models.RestoreResult{
				Payload: &models.RestorePayload{Body: []byte(`{}`)},
			}, nil
		})

	target := "/api/restore?domain=clinic&user_id=u-1&device_id=d-1" +
		"&since=state-0&state_hash=ccsh:aa&version=2.0" +
		"&force_cache=true&overwrite_cache=true&skip_cache=true&async=true"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RestoreRequest{
		Domain:       "clinic",
		UserID:       "u-1",
		DeviceID:     "d-1",
		PriorStateID: "state-0",
		StateHash:    "ccsh:aa",
		Version:      "2.0",
		Cache:        models.CacheControl{Force: true, Overwrite: true, Skip: true},
		Async:        true,
	}, got)
}

func TestServerVersionEndpoint(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.1.0", rec.Body.String())
}

func TestUnsupportedMethodIsMasked(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/restore", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTraceIDPropagation(t *testing.T) {
	restore, router := newTestHandler(t)
	restore.EXPECT().Restore(gomock.Any(), gomock.Any()).Return(models.RestoreResult{
		Payload: &models.RestorePayload{Body: []byte(`{}`)},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/restore?domain=d&user_id=u", nil)
	req.Header.Set(traceIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", rec.Header().Get(traceIDHeader))
}

func TestTraceIDGenerated(t *testing.T) {
	restore, router := newTestHandler(t)
	restore.EXPECT().Restore(gomock.Any(), gomock.Any()).Return(models.RestoreResult{
		Payload: &models.RestorePayload{Body: []byte(`{}`)},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/restore?domain=d&user_id=u", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
}
