// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

// Package service implements the restore orchestration layer: checkpoint
// validation, payload generation, caching and background dispatch.
package service

import (
	"github.com/fieldsync/casesync/internal/cache"
	"github.com/fieldsync/casesync/internal/config"
	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/internal/store"
)

// Services bundles the application services handed to the transport layer.
type Services struct {
	Restore RestoreService
}

// NewServices wires the service layer from its dependencies.
func NewServices(
	repos *store.Repositories,
	payloadCache cache.Cache,
	queue TaskQueue,
	oracle CaseOracle,
	fixtures FixtureSource,
	cfg *config.StructuredConfig,
	log *logger.Logger,
) *Services {
	return &Services{
		Restore: NewRestoreService(
			repos.SyncStates,
			payloadCache,
			queue,
			oracle,
			fixtures,
			cfg.Restore,
			cfg.App.Version,
			log,
		),
	}
}
