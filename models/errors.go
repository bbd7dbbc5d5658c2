// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package models

import "fmt"

// SyncIntegrityError reports that a purge decided to remove a case the
// footprint does not hold: the index trees and the case sets disagree.
// It is only surfaced in strict mode; otherwise the inconsistency is
// logged and repaired in place.
type SyncIntegrityError struct {
	StateID string
	CaseID  string
}

func (e *SyncIntegrityError) Error() string {
	return fmt.Sprintf("sync state %s: purge target %s not in phone footprint", e.StateID, e.CaseID)
}
