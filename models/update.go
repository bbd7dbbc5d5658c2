// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package models

// CaseActionType enumerates the closed set of actions a case update can
// carry. The purge algorithm matches on these exhaustively; an upstream
// parser is responsible for mapping submitted documents onto them.
type CaseActionType string

const (
	// ActionCreate introduces a case, optionally assigning an owner.
	ActionCreate CaseActionType = "create"
	// ActionUpdate modifies case properties, optionally reassigning the owner.
	ActionUpdate CaseActionType = "update"
	// ActionClose marks the case closed.
	ActionClose CaseActionType = "close"
	// ActionIndex adds or removes case-to-case references.
	ActionIndex CaseActionType = "index"
	// ActionNoop carries no change; it exists so parsers can emit a placeholder
	// for blocks they recognized but that have no sync-relevant effect.
	ActionNoop CaseActionType = "noop"
)

// CaseAction is one step of a case update. Only the fields relevant to its
// Type are set: OwnerID for create/update (nil when ownership was not
// touched), Indices for index actions.
type CaseAction struct {
	Type    CaseActionType `json:"type"`
	OwnerID *string        `json:"owner_id,omitempty"`
	Indices []CaseIndex    `json:"indices,omitempty"`
}

// CaseUpdate is everything observed for one case since the last sync,
// in the order the actions were applied server-side.
type CaseUpdate struct {
	CaseID  string       `json:"case_id"`
	Actions []CaseAction `json:"actions"`
}

// OwnerOf is a convenience constructor for the OwnerID pointer on a
// CaseAction.
func OwnerOf(ownerID string) *string {
	return &ownerID
}
