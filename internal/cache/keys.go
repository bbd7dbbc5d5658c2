// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package cache

import "fmt"

// Cache keys are derived from the restore identity, so a device polling for
// its payload and the worker writing it agree on the location without any
// coordination beyond the request itself.

const freshMarker = "fresh"

// PayloadKey names the cached restore payload for one device syncing
// against one checkpoint at one output version. An empty priorStateID
// denotes an initial restore.
func PayloadKey(domain, userID, deviceID, priorStateID, version string) string {
	if priorStateID == "" {
		priorStateID = freshMarker
	}
	return fmt.Sprintf("restore:payload:%s:%s:%s:%s:%s", domain, userID, priorStateID, deviceID, version)
}

// TaskKey names the handle of an in-flight async generation for the same
// identity as [PayloadKey].
func TaskKey(domain, userID, deviceID, priorStateID string) string {
	if priorStateID == "" {
		priorStateID = freshMarker
	}
	return fmt.Sprintf("restore:task:%s:%s:%s:%s", domain, userID, deviceID, priorStateID)
}
