// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package http

import (
	"errors"
	"net/http"

	"github.com/fieldsync/casesync/internal/service"
	"github.com/fieldsync/casesync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrNoDomain:           http.StatusBadRequest,
	service.ErrNoUserID:           http.StatusBadRequest,
	service.ErrMalformedStateHash: http.StatusBadRequest,

	service.ErrMissingCheckpoint: http.StatusNotFound,
	// A drifted footprint means the device must start over with an
	// initial restore.
	service.ErrStateMismatch: http.StatusPreconditionFailed,

	service.ErrCheckpointOwnership: http.StatusForbidden,

	service.ErrGenerationFailure: http.StatusInternalServerError,

	store.ErrSyncStateNotFound:  http.StatusNotFound,
	store.ErrSyncStateNotSaved:  http.StatusInternalServerError,
	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
