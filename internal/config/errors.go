// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidServerConfigs indicates invalid server settings
	// (for example, missing HTTP address or a non-positive timeout).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, no cache directory for an on-disk cache).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidRestoreConfigs indicates invalid restore pipeline settings
	// (for example, non-positive poll intervals or cache lifetime).
	ErrInvalidRestoreConfigs = errors.New("invalid restore configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, a zero pool size or queue capacity).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
