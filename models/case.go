// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package models

import (
	"encoding/json"
	"sort"
)

// Relationship kinds for case-to-case indices. A child index ties a subcase
// to its parent; an extension index ties an extension case to its host, and
// the extension's liveness follows the host rather than direct ownership.
const (
	RelationshipChild     = "child"
	RelationshipExtension = "extension"
)

// CaseIndex is a directed reference from one case to another. The owning
// case holds at most one reference per identifier, so (CaseID, Identifier)
// uniquely determines the edge. An index action with an empty ReferencedID
// means "delete the reference stored under this identifier".
type CaseIndex struct {
	CaseID       string `json:"case_id"`
	Identifier   string `json:"identifier"`
	ReferencedID string `json:"referenced_id"`
	Relationship string `json:"relationship"`
}

// IsDeletion reports whether the index represents a reference removal.
func (i CaseIndex) IsDeletion() bool {
	return i.ReferencedID == ""
}

// CaseSnapshot is the case oracle's current view of a single case: enough
// to decide ownership, liveness and graph placement, nothing more.
type CaseSnapshot struct {
	CaseID  string      `json:"case_id"`
	Type    string      `json:"type"`
	OwnerID string      `json:"owner_id"`
	Closed  bool        `json:"closed"`
	Indices []CaseIndex `json:"indices,omitempty"`
}

// CaseIDSet is a set of case identifiers. It serializes as a sorted JSON
// array so persisted sync-state documents are byte-stable across runs.
type CaseIDSet map[string]struct{}

// NewCaseIDSet builds a set from the given ids.
func NewCaseIDSet(ids ...string) CaseIDSet {
	s := make(CaseIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s CaseIDSet) Add(id string) {
	s[id] = struct{}{}
}

// Remove deletes id from the set; removing an absent id is a no-op.
func (s CaseIDSet) Remove(id string) {
	delete(s, id)
}

// Has reports whether id is in the set.
func (s CaseIDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Copy returns an independent copy of the set.
func (s CaseIDSet) Copy() CaseIDSet {
	out := make(CaseIDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Union returns a new set holding every id present in either set.
func (s CaseIDSet) Union(other CaseIDSet) CaseIDSet {
	out := s.Copy()
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Difference returns a new set holding ids of s that are not in other.
func (s CaseIDSet) Difference(other CaseIDSet) CaseIDSet {
	out := make(CaseIDSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set holding ids present in both sets.
func (s CaseIDSet) Intersect(other CaseIDSet) CaseIDSet {
	out := make(CaseIDSet)
	for id := range s {
		if other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the set's ids as a sorted slice.
func (s CaseIDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON implements json.Marshaler, emitting a sorted array.
func (s CaseIDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON implements json.Unmarshaler, accepting a JSON array of ids.
func (s *CaseIDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewCaseIDSet(ids...)
	return nil
}
