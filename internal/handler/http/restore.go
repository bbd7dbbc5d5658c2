// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package http

import (
	"net/http"
	"strconv"

	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/internal/utils"
	"github.com/fieldsync/casesync/models"
)

const (
	headerStateID   = "X-Sync-State-ID"
	headerStateHash = "X-Sync-State-Hash"
	headerFromCache = "X-Restore-From-Cache"
)

// restore serves GET /api/restore. An empty "since" parameter requests an
// initial restore; otherwise "since" names the device's prior sync state and
// "state_hash" carries its reported fingerprint.
func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	req := restoreRequestFromQuery(r)

	result, err := h.services.Restore.Restore(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.restore").Msg("restore failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if result.Pending != nil {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.Pending.RetryAfter.Seconds())))
		utils.WriteJSON(w, pendingResponse{
			TaskID:            result.Pending.TaskID,
			RetryAfterSeconds: int(result.Pending.RetryAfter.Seconds()),
		}, http.StatusAccepted)
		return
	}

	payload := result.Payload
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(headerStateID, payload.StateID)
	w.Header().Set(headerStateHash, payload.StateHash)
	if payload.FromCache {
		w.Header().Set(headerFromCache, "true")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(payload.Body)
}

type pendingResponse struct {
	TaskID            string `json:"task_id"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

func restoreRequestFromQuery(r *http.Request) models.RestoreRequest {
	query := r.URL.Query()
	return models.RestoreRequest{
		Domain:       query.Get("domain"),
		UserID:       query.Get("user_id"),
		DeviceID:     query.Get("device_id"),
		PriorStateID: query.Get("since"),
		StateHash:    query.Get("state_hash"),
		Version:      query.Get("version"),
		Cache: models.CacheControl{
			Force:     boolParam(query.Get("force_cache")),
			Overwrite: boolParam(query.Get("overwrite_cache")),
			Skip:      boolParam(query.Get("skip_cache")),
		},
		Async: boolParam(query.Get("async")),
	}
}

func boolParam(value string) bool {
	parsed, err := strconv.ParseBool(value)
	return err == nil && parsed
}
