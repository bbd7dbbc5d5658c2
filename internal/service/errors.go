// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package service

import "errors"

var (
	// ErrNoDomain is returned for a restore request without a domain.
	ErrNoDomain = errors.New("restore request has no domain")
	// ErrNoUserID is returned for a restore request without a user id.
	ErrNoUserID = errors.New("restore request has no user id")
	// ErrMalformedStateHash is returned when the reported state hash is
	// not a parseable fingerprint.
	ErrMalformedStateHash = errors.New("reported state hash is malformed")

	// ErrMissingCheckpoint is returned when the request references a sync
	// state id that does not exist. The device must start over with an
	// initial restore.
	ErrMissingCheckpoint = errors.New("referenced sync state does not exist")
	// ErrCheckpointOwnership is returned when the referenced sync state
	// belongs to a different domain, user or device.
	ErrCheckpointOwnership = errors.New("sync state belongs to a different user or device")
	// ErrStateMismatch is returned when the device's reported state hash
	// does not match the checkpoint's fingerprint.
	ErrStateMismatch = errors.New("reported state hash does not match the checkpoint")

	// ErrGenerationFailure wraps any error produced while generating a
	// payload, inline or in the background.
	ErrGenerationFailure = errors.New("restore payload generation failed")
)
