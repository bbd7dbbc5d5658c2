// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package http

import (
	"net/http"

	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/internal/utils"
)

// getCheckpoint serves GET /api/restore/checkpoint: the newest recorded sync
// state for a domain/user/device triple. Meant for diagnosing devices that
// lost their checkpoint id.
func (h *Handler) getCheckpoint(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	info, err := h.services.Restore.Checkpoint(
		r.Context(),
		query.Get("domain"),
		query.Get("user_id"),
		query.Get("device_id"),
	)
	if err != nil {
		logger.FromRequest(r).Error().Err(err).Str("func", "*Handler.getCheckpoint").Msg("checkpoint lookup failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, info, http.StatusOK)
}
