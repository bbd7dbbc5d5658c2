// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package config

import "time"

// validate checks that the final merged [StructuredConfig] satisfies all
// service invariants before it is used at startup. The defaults layer fills
// every tunable, so a failure here means a source explicitly supplied a
// value the service cannot run with.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.Storage.Cache.Dir == "" && !cfg.Storage.Cache.InMemory {
		return ErrInvalidStorageConfigs
	}

	if cfg.Restore.InitialRetryAfter <= 0 || cfg.Restore.PollRetryAfter <= 0 ||
		cfg.Restore.CacheTTL <= 0 || cfg.Restore.RetentionWindow <= 0 ||
		cfg.Restore.AsyncGracePeriod <= 0 {
		return ErrInvalidRestoreConfigs
	}
	// cached payloads must outlive the async polling cycle
	if cfg.Restore.CacheTTL < time.Hour {
		cfg.Restore.CacheTTL = time.Hour
	}

	if cfg.Workers.PoolSize < 1 || cfg.Workers.QueueCapacity < 1 ||
		cfg.Workers.ResultTTL <= 0 || cfg.Workers.GCInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
