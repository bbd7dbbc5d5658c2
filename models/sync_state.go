// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package models

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldsync/casesync/internal/checksum"
	"github.com/fieldsync/casesync/internal/logger"
)

// SyncState is the server-side model of everything a device holds after a
// completed restore: the case footprint, both index trees and the closed-case
// bookkeeping needed to decide what the next restore may finally drop.
//
// CaseIDsOnPhone is the full footprint. DependentCaseIDs is the subset held
// only because something else references it; the difference of the two is
// the primary set, which also defines the state hash. PurgedCases records
// what this state has already removed, so repeated purges over the same
// graph terminate and never resurrect a dropped case.
type SyncState struct {
	ID              string `json:"id"`
	Domain          string `json:"domain"`
	UserID          string `json:"user_id"`
	DeviceID        string `json:"device_id"`
	PreviousStateID string `json:"previous_state_id,omitempty"`

	CaseIDsOnPhone     CaseIDSet  `json:"case_ids_on_phone"`
	DependentCaseIDs   CaseIDSet  `json:"dependent_case_ids_on_phone"`
	OwnerIDs           CaseIDSet  `json:"owner_ids_on_phone"`
	ChildIndexTree     *IndexTree `json:"index_tree"`
	ExtensionIndexTree *IndexTree `json:"extension_index_tree"`
	ClosedCases        CaseIDSet  `json:"closed_cases"`
	PurgedCases        CaseIDSet  `json:"purged_cases"`

	CreatedAt       time.Time `json:"created_at"`
	LastSubmittedAt time.Time `json:"last_submitted_at,omitzero"`

	// Hash-mismatch audit trail. A mismatch observed in lenient mode is
	// recorded here instead of failing the restore.
	HadStateError bool      `json:"had_state_error,omitempty"`
	ErrorDate     time.Time `json:"error_date,omitzero"`
	ErrorHash     string    `json:"error_hash,omitempty"`

	// Strict makes removal of a case that is not on the phone a hard
	// error instead of a logged inconsistency.
	Strict bool `json:"-"`

	memo *traversalMemo
	hash string
}

// NewSyncState returns an empty state for a fresh device checkpoint.
func NewSyncState(domain, userID, deviceID string, ownerIDs []string) *SyncState {
	return &SyncState{
		ID:                 uuid.NewString(),
		Domain:             domain,
		UserID:             userID,
		DeviceID:           deviceID,
		CaseIDsOnPhone:     make(CaseIDSet),
		DependentCaseIDs:   make(CaseIDSet),
		OwnerIDs:           NewCaseIDSet(ownerIDs...),
		ChildIndexTree:     NewIndexTree(),
		ExtensionIndexTree: NewIndexTree(),
		ClosedCases:        make(CaseIDSet),
		PurgedCases:        make(CaseIDSet),
		CreatedAt:          time.Now().UTC(),
	}
}

// Next derives the successor state for an incremental restore: a fresh id
// chained to the receiver, carrying deep copies of the case sets and trees.
// The purge ledger starts empty; what the previous state dropped is history.
func (s *SyncState) Next() *SyncState {
	s.Normalize()
	return &SyncState{
		ID:                 uuid.NewString(),
		Domain:             s.Domain,
		UserID:             s.UserID,
		DeviceID:           s.DeviceID,
		PreviousStateID:    s.ID,
		CaseIDsOnPhone:     s.CaseIDsOnPhone.Copy(),
		DependentCaseIDs:   s.DependentCaseIDs.Copy(),
		OwnerIDs:           s.OwnerIDs.Copy(),
		ChildIndexTree:     s.ChildIndexTree.Copy(),
		ExtensionIndexTree: s.ExtensionIndexTree.Copy(),
		ClosedCases:        s.ClosedCases.Copy(),
		PurgedCases:        make(CaseIDSet),
		CreatedAt:          time.Now().UTC(),
		Strict:             s.Strict,
	}
}

// Normalize allocates any nil collections. Decoding a persisted document can
// leave maps nil; every entry point calls this so the algorithms never have
// to distinguish "empty" from "absent".
func (s *SyncState) Normalize() {
	if s.CaseIDsOnPhone == nil {
		s.CaseIDsOnPhone = make(CaseIDSet)
	}
	if s.DependentCaseIDs == nil {
		s.DependentCaseIDs = make(CaseIDSet)
	}
	if s.OwnerIDs == nil {
		s.OwnerIDs = make(CaseIDSet)
	}
	if s.ChildIndexTree == nil {
		s.ChildIndexTree = NewIndexTree()
	}
	if s.ExtensionIndexTree == nil {
		s.ExtensionIndexTree = NewIndexTree()
	}
	if s.ClosedCases == nil {
		s.ClosedCases = make(CaseIDSet)
	}
	if s.PurgedCases == nil {
		s.PurgedCases = make(CaseIDSet)
	}
}

// PrimaryCaseIDs returns the cases the device holds in their own right.
func (s *SyncState) PrimaryCaseIDs() CaseIDSet {
	return s.CaseIDsOnPhone.Difference(s.DependentCaseIDs)
}

// IsHoldingCase reports whether caseID is anywhere in the footprint.
func (s *SyncState) IsHoldingCase(caseID string) bool {
	return s.CaseIDsOnPhone.Has(caseID)
}

// CaseCount returns the size of the footprint.
func (s *SyncState) CaseCount() int {
	return len(s.CaseIDsOnPhone)
}

// StateHash returns the fingerprint of the full case footprint. The digest
// is cached until the footprint next changes.
func (s *SyncState) StateHash() checksum.CaseStateHash {
	if s.hash == "" {
		s.hash = checksum.Checksum(s.CaseIDsOnPhone.Sorted())
	}
	return checksum.New(s.hash)
}

// RecordHashMismatch stamps the audit fields for a state-hash mismatch that
// was tolerated rather than rejected.
func (s *SyncState) RecordHashMismatch(reported checksum.CaseStateHash, at time.Time) {
	s.HadStateError = true
	s.ErrorDate = at.UTC()
	s.ErrorHash = reported.Hex()
}

func (s *SyncState) markMutated() {
	s.memo = nil
	s.hash = ""
}

// ApplyUpdates folds a batch of observed case updates into the state.
//
// Updates to live cases take effect immediately. Everything else is
// deferred: closures are recorded first, then the non-live updates are
// walked in an order where referrers precede the cases they reference, so
// a case is admitted as a dependent if anything (including another update
// in the same batch) has declared a reference to it by the time it is
// considered. Each deferred case still on the phone is then purged; if it
// survives, its remaining index changes are applied.
//
// The returned bool reports whether the state changed at all. An empty or
// fully redundant batch leaves the state, and therefore its hash, intact.
func (s *SyncState) ApplyUpdates(ctx context.Context, updates []CaseUpdate) (bool, error) {
	s.Normalize()
	log := logger.FromContext(ctx)

	deltas, order := rollUpUpdates(updates, s.PrimaryCaseIDs())

	changed := false
	var deferred []*caseDelta
	for _, caseID := range order {
		delta := deltas[caseID]
		if !delta.isLive(s.OwnerIDs) {
			deferred = append(deferred, delta)
			if delta.closed && !s.ClosedCases.Has(caseID) {
				s.ClosedCases.Add(caseID)
				s.markMutated()
				changed = true
			}
			continue
		}
		if !s.CaseIDsOnPhone.Has(caseID) || s.DependentCaseIDs.Has(caseID) {
			s.addPrimaryCase(caseID)
			changed = true
		}
		for _, index := range delta.indicesToAdd {
			s.addIndex(index, delta)
			changed = true
		}
		for _, index := range delta.indicesToDelete {
			s.deleteIndex(index)
			changed = true
		}
		delta.indicesApplied = true
	}

	deferred = sortDeferredUpdates(deferred, s.ChildIndexTree, s.ExtensionIndexTree)

	for _, delta := range deferred {
		dependedOn := len(s.ChildIndexTree.CasesThatDependOn(delta.caseID)) > 0 ||
			len(s.ExtensionIndexTree.CasesThatDependOn(delta.caseID)) > 0
		if !delta.hasExtensionIndicesToAdd() && !dependedOn {
			continue
		}
		if !s.CaseIDsOnPhone.Has(delta.caseID) {
			s.CaseIDsOnPhone.Add(delta.caseID)
			s.DependentCaseIDs.Add(delta.caseID)
			s.markMutated()
		}
		for _, index := range delta.indicesToAdd {
			s.addIndex(index, delta)
		}
		delta.indicesApplied = true
		changed = true
	}

	for _, delta := range deferred {
		if !s.CaseIDsOnPhone.Has(delta.caseID) {
			continue
		}
		if err := s.Purge(ctx, delta.caseID); err != nil {
			return changed, err
		}
		if s.CaseIDsOnPhone.Has(delta.caseID) {
			if !delta.indicesApplied {
				for _, index := range delta.indicesToAdd {
					s.addIndex(index, delta)
				}
			}
			for _, index := range delta.indicesToDelete {
				s.deleteIndex(index)
			}
		}
		changed = true
	}

	if changed {
		s.LastSubmittedAt = time.Now().UTC()
		log.Debug().
			Str("sync_state_id", s.ID).
			Int("updates", len(updates)).
			Int("case_count", s.CaseCount()).
			Msg("applied case updates")
	}
	return changed, nil
}

// Purge removes caseID from the footprint if nothing justifies keeping it,
// and cascades through whatever its removal orphans.
//
// The case is first marked dependent, so the only thing that can keep it is
// an incoming reference chain from a primary case. Three sets are then
// computed over the reference graph: the cases relevant to the decision,
// the subset whose own structure still permits syncing, and the subset
// reachable from primary cases. Everything relevant that is neither live
// nor already purged is removed. Removal of a case that referenced another
// dependent re-runs the purge for that dependent, iteratively, until the
// graph is stable.
func (s *SyncState) Purge(ctx context.Context, caseID string) error {
	s.Normalize()
	worklist := []string{caseID}
	for len(worklist) > 0 {
		next := worklist[0]
		worklist = worklist[1:]
		// An earlier pass in this cascade may already have dropped the
		// entry; re-purging it would re-admit it as a dependent.
		if s.PurgedCases.Has(next) {
			continue
		}
		rest, err := s.purgeOne(ctx, next)
		if err != nil {
			return err
		}
		worklist = append(worklist, rest...)
	}
	return nil
}

// purgeOne runs a single purge pass for caseID and returns the dependent
// cases whose keep-or-drop decision must be revisited.
func (s *SyncState) purgeOne(ctx context.Context, caseID string) ([]string, error) {
	log := logger.FromContext(ctx)

	if !s.DependentCaseIDs.Has(caseID) {
		s.DependentCaseIDs.Add(caseID)
		s.markMutated()
	}

	relevant := GetAllDependencies(caseID, s.ChildIndexTree, s.ExtensionIndexTree)
	available := s.availableCases(relevant)
	live := s.liveCases(available)
	toRemove := relevant.Difference(s.PurgedCases).Difference(live)

	log.Debug().
		Str("case_id", caseID).
		Int("relevant", len(relevant)).
		Int("live", len(live)).
		Int("removed", len(toRemove)).
		Msg("purge pass")

	var revisit []string
	for _, id := range toRemove.Sorted() {
		// Outgoing child references are captured before the removal drops
		// them: each referenced dependent outside this batch gets its own
		// purge pass.
		childRefs := s.ChildIndexTree.IndicesOf(id)
		referenced := make([]string, 0, len(childRefs))
		for _, ref := range childRefs {
			referenced = append(referenced, ref)
		}

		if err := s.removeCase(ctx, id); err != nil {
			return nil, err
		}
		for _, ref := range referenced {
			if s.DependentCaseIDs.Has(ref) && !toRemove.Has(ref) && ref != caseID {
				revisit = append(revisit, ref)
			}
		}
	}
	return revisit, nil
}

// availableCases filters the relevant closure down to cases whose own
// structure permits syncing, then extends through open, unpurged incoming
// extensions: an available host carries its extension chain with it.
func (s *SyncState) availableCases(relevant CaseIDSet) CaseIDSet {
	available := make(CaseIDSet)
	queue := make([]string, 0, len(relevant))
	for id := range relevant {
		if s.ClosedCases.Has(id) {
			continue
		}
		// A pure extension is never available on its own account; one
		// that also holds a child index is.
		if s.ExtensionIndexTree.HasOutgoing(id) && !s.ChildIndexTree.HasOutgoing(id) {
			continue
		}
		available.Add(id)
		queue = append(queue, id)
	}

	incoming := s.ExtensionIndexTree.ReverseIndex()
	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for id := range incoming[current] {
			if s.ClosedCases.Has(id) || s.PurgedCases.Has(id) || available.Has(id) {
				continue
			}
			available.Add(id)
			queue = append(queue, id)
		}
	}
	return available
}

// liveCases narrows available cases to those reachable from the primary
// set, following outgoing references and open incoming extensions.
func (s *SyncState) liveCases(available CaseIDSet) CaseIDSet {
	live := available.Intersect(s.PrimaryCaseIDs())
	checked := make(CaseIDSet)
	queue := live.Sorted()
	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if checked.Has(current) {
			continue
		}
		checked.Add(current)

		for id := range s.outgoingClosure(current) {
			if !s.PurgedCases.Has(id) && !live.Has(id) {
				live.Add(id)
				queue = append(queue, id)
			}
		}
		for id := range s.incomingExtensionClosure(current) {
			if !s.PurgedCases.Has(id) && !live.Has(id) {
				live.Add(id)
				queue = append(queue, id)
			}
		}
	}
	return live
}

// removeCase drops one case from the footprint and the trees. A removal
// target missing from the footprint is an inconsistency between the trees
// and the case sets; in strict mode it aborts the purge.
func (s *SyncState) removeCase(ctx context.Context, caseID string) error {
	log := logger.FromContext(ctx)

	s.ChildIndexTree.DeleteAllIndices(caseID)
	s.ExtensionIndexTree.DeleteAllIndices(caseID)

	if !s.CaseIDsOnPhone.Has(caseID) {
		log.Warn().
			Str("sync_state_id", s.ID).
			Str("case_id", caseID).
			Msg("purge target missing from phone footprint")
		if s.Strict {
			return &SyncIntegrityError{StateID: s.ID, CaseID: caseID}
		}
	}
	s.CaseIDsOnPhone.Remove(caseID)
	s.DependentCaseIDs.Remove(caseID)
	s.PurgedCases.Add(caseID)
	s.markMutated()
	return nil
}

// PurgeDependentCases re-examines every dependent case currently on the
// phone. It is run when building a fresh state, where dependents were
// admitted wholesale from the ownership closure and some may turn out to
// be unreachable from any primary case.
func (s *SyncState) PurgeDependentCases(ctx context.Context) error {
	s.Normalize()
	for _, id := range s.DependentCaseIDs.Sorted() {
		if !s.DependentCaseIDs.Has(id) {
			continue
		}
		if err := s.Purge(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SeedCase places an oracle snapshot into a state being built from scratch.
// Owned open cases become primary; everything else rides along as a dependent
// until PurgeDependentCases decides whether anything reachable keeps it.
func (s *SyncState) SeedCase(snap CaseSnapshot) {
	s.Normalize()
	s.CaseIDsOnPhone.Add(snap.CaseID)
	if snap.Closed {
		s.ClosedCases.Add(snap.CaseID)
	}
	if snap.Closed || snap.OwnerID == "" || !s.OwnerIDs.Has(snap.OwnerID) {
		s.DependentCaseIDs.Add(snap.CaseID)
	}
	for _, index := range snap.Indices {
		if index.IsDeletion() {
			continue
		}
		if index.Relationship == RelationshipExtension {
			s.ExtensionIndexTree.SetIndex(index.CaseID, index.Identifier, index.ReferencedID)
		} else {
			s.ChildIndexTree.SetIndex(index.CaseID, index.Identifier, index.ReferencedID)
		}
	}
	s.markMutated()
}

func (s *SyncState) addPrimaryCase(caseID string) {
	s.CaseIDsOnPhone.Add(caseID)
	s.DependentCaseIDs.Remove(caseID)
	s.markMutated()
}

// addIndex records an index edge and registers the referenced case as a
// dependent if the phone does not hold it yet. For extension indices the
// referencing case itself becomes dependent when it is neither live nor a
// child of the same host: such an extension exists only through its host.
func (s *SyncState) addIndex(index CaseIndex, delta *caseDelta) {
	if index.Relationship == RelationshipExtension {
		s.ExtensionIndexTree.SetIndex(index.CaseID, index.Identifier, index.ReferencedID)
		if delta != nil && !delta.isLive(s.OwnerIDs) && !delta.hasChildIndexTo(index.ReferencedID) {
			s.DependentCaseIDs.Add(index.CaseID)
		}
	} else {
		s.ChildIndexTree.SetIndex(index.CaseID, index.Identifier, index.ReferencedID)
	}
	if !s.CaseIDsOnPhone.Has(index.ReferencedID) {
		s.CaseIDsOnPhone.Add(index.ReferencedID)
		s.DependentCaseIDs.Add(index.ReferencedID)
	}
	s.markMutated()
}

func (s *SyncState) deleteIndex(index CaseIndex) {
	// A deletion record carries no relationship, so the identifier is
	// cleared from whichever tree holds it.
	s.ChildIndexTree.DeleteIndex(index.CaseID, index.Identifier)
	s.ExtensionIndexTree.DeleteIndex(index.CaseID, index.Identifier)
	s.markMutated()
}

// traversalMemo caches per-case graph closures within a single purge
// computation. Any tree or closed-set mutation drops it.
type traversalMemo struct {
	outgoing    map[string]CaseIDSet
	incomingExt map[string]CaseIDSet
}

func (s *SyncState) outgoingClosure(caseID string) CaseIDSet {
	if s.memo == nil {
		s.memo = &traversalMemo{
			outgoing:    make(map[string]CaseIDSet),
			incomingExt: make(map[string]CaseIDSet),
		}
	}
	if set, ok := s.memo.outgoing[caseID]; ok {
		return set
	}
	set := GetAllOutgoingCases(caseID, s.ChildIndexTree, s.ExtensionIndexTree)
	s.memo.outgoing[caseID] = set
	return set
}

func (s *SyncState) incomingExtensionClosure(caseID string) CaseIDSet {
	if s.memo == nil {
		s.memo = &traversalMemo{
			outgoing:    make(map[string]CaseIDSet),
			incomingExt: make(map[string]CaseIDSet),
		}
	}
	if set, ok := s.memo.incomingExt[caseID]; ok {
		return set
	}
	set := TraverseIncomingExtensions(caseID, s.ExtensionIndexTree, s.ClosedCases)
	s.memo.incomingExt[caseID] = set
	return set
}

// caseDelta is the net effect of every action observed for one case within
// a batch: last owner write wins, a close anywhere sticks, and index writes
// accumulate split by add versus delete.
type caseDelta struct {
	caseID            string
	wasLivePreviously bool
	finalOwnerID      *string
	closed            bool
	indicesToAdd      []CaseIndex
	indicesToDelete   []CaseIndex
	indicesApplied    bool
}

// isLive reports whether the case should be on the phone in its own right
// after the batch. A closed case is never live; a case whose ownership the
// batch did not touch keeps its previous standing.
func (d *caseDelta) isLive(ownerIDs CaseIDSet) bool {
	switch {
	case d.closed:
		return false
	case d.finalOwnerID == nil:
		return d.wasLivePreviously
	default:
		return ownerIDs.Has(*d.finalOwnerID)
	}
}

func (d *caseDelta) hasExtensionIndicesToAdd() bool {
	for _, index := range d.indicesToAdd {
		if index.Relationship == RelationshipExtension {
			return true
		}
	}
	return false
}

func (d *caseDelta) hasChildIndexTo(referencedID string) bool {
	for _, index := range d.indicesToAdd {
		if index.Relationship == RelationshipChild && index.ReferencedID == referencedID {
			return true
		}
	}
	return false
}

// rollUpUpdates collapses the batch into one delta per case, preserving
// first-seen order.
func rollUpUpdates(updates []CaseUpdate, primary CaseIDSet) (map[string]*caseDelta, []string) {
	deltas := make(map[string]*caseDelta, len(updates))
	order := make([]string, 0, len(updates))
	for _, update := range updates {
		delta, ok := deltas[update.CaseID]
		if !ok {
			delta = &caseDelta{
				caseID:            update.CaseID,
				wasLivePreviously: primary.Has(update.CaseID),
			}
			deltas[update.CaseID] = delta
			order = append(order, update.CaseID)
		}
		for _, action := range update.Actions {
			switch action.Type {
			case ActionCreate, ActionUpdate:
				if action.OwnerID != nil {
					delta.finalOwnerID = action.OwnerID
				}
			case ActionClose:
				delta.closed = true
			case ActionIndex:
				for _, index := range action.Indices {
					if index.IsDeletion() {
						delta.indicesToDelete = append(delta.indicesToDelete, index)
					} else {
						delta.indicesToAdd = append(delta.indicesToAdd, index)
					}
				}
			case ActionNoop:
			}
		}
	}
	return deltas, order
}

// sortDeferredUpdates orders deferred deltas so that a case declaring a
// reference comes before the case it references. That way, by the time a
// referenced case is considered for admission, the referrer's indices are
// already in the trees. Cycles get no useful order; whatever remains after
// the acyclic part is appended sorted by case id for determinism.
func sortDeferredUpdates(deferred []*caseDelta, childTree, extensionTree *IndexTree) []*caseDelta {
	if len(deferred) < 2 {
		return deferred
	}

	byID := make(map[string]*caseDelta, len(deferred))
	for _, delta := range deferred {
		byID[delta.caseID] = delta
	}

	referencesOf := func(delta *caseDelta) CaseIDSet {
		refs := make(CaseIDSet)
		for _, index := range delta.indicesToAdd {
			refs.Add(index.ReferencedID)
		}
		for _, ref := range childTree.IndicesOf(delta.caseID) {
			refs.Add(ref)
		}
		for _, ref := range extensionTree.IndicesOf(delta.caseID) {
			refs.Add(ref)
		}
		return refs
	}

	indegree := make(map[string]int, len(deferred))
	successors := make(map[string][]string, len(deferred))
	for _, delta := range deferred {
		indegree[delta.caseID] += 0
		for ref := range referencesOf(delta) {
			if ref == delta.caseID {
				continue
			}
			if _, ok := byID[ref]; !ok {
				continue
			}
			successors[delta.caseID] = append(successors[delta.caseID], ref)
			indegree[ref]++
		}
	}

	var queue []string
	for _, delta := range deferred {
		if indegree[delta.caseID] == 0 {
			queue = append(queue, delta.caseID)
		}
	}

	sorted := make([]*caseDelta, 0, len(deferred))
	placed := make(CaseIDSet, len(deferred))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, byID[current])
		placed.Add(current)
		for _, ref := range successors[current] {
			indegree[ref]--
			if indegree[ref] == 0 {
				queue = append(queue, ref)
			}
		}
	}

	if len(sorted) < len(deferred) {
		remaining := make(CaseIDSet)
		for _, delta := range deferred {
			if !placed.Has(delta.caseID) {
				remaining.Add(delta.caseID)
			}
		}
		for _, id := range remaining.Sorted() {
			sorted = append(sorted, byID[id])
		}
	}
	return sorted
}
