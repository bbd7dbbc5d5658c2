// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package http

import (
	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/internal/service"
)

type Handler struct {
	services *service.Services
	version  string

	logger *logger.Logger
}

func NewHandler(services *service.Services, version string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		version:  version,
		logger:   logger,
	}
}
