// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package models

// IndexTree is the adjacency structure over case-to-case references for a
// single relationship kind. The forward map is the sole source of truth:
// caseID → identifier → referencedID, at most one referenced case per
// (caseID, identifier) pair.
//
// The reverse index is derived lazily and cached; every mutating operation
// drops the cache so traversals never observe a stale reverse map.
type IndexTree struct {
	Indices map[string]map[string]string `json:"indices"`

	// reverse is the cached referencedID → {caseID, ...} lookup.
	// nil means "not computed since the last mutation".
	reverse map[string]CaseIDSet
}

// NewIndexTree returns an empty tree.
func NewIndexTree() *IndexTree {
	return &IndexTree{Indices: make(map[string]map[string]string)}
}

// SetIndex upserts the reference stored under (fromCase, identifier).
func (t *IndexTree) SetIndex(fromCase, identifier, toCase string) {
	if t.Indices == nil {
		t.Indices = make(map[string]map[string]string)
	}
	refs := t.Indices[fromCase]
	if refs == nil {
		refs = make(map[string]string)
		t.Indices[fromCase] = refs
	}
	refs[identifier] = toCase
	t.reverse = nil
}

// DeleteIndex removes the reference stored under (fromCase, identifier).
// Deleting an absent reference is a no-op.
func (t *IndexTree) DeleteIndex(fromCase, identifier string) {
	refs, ok := t.Indices[fromCase]
	if !ok {
		return
	}
	delete(refs, identifier)
	if len(refs) == 0 {
		delete(t.Indices, fromCase)
	}
	t.reverse = nil
}

// DeleteAllIndices removes every outgoing reference of fromCase and returns
// the identifier → referencedID map that was dropped.
func (t *IndexTree) DeleteAllIndices(fromCase string) map[string]string {
	refs, ok := t.Indices[fromCase]
	if !ok {
		return nil
	}
	delete(t.Indices, fromCase)
	t.reverse = nil
	return refs
}

// IndicesOf returns the identifier → referencedID map of fromCase. The
// returned map is the tree's own storage; callers must not mutate it.
func (t *IndexTree) IndicesOf(fromCase string) map[string]string {
	return t.Indices[fromCase]
}

// HasOutgoing reports whether fromCase holds at least one reference.
func (t *IndexTree) HasOutgoing(fromCase string) bool {
	return len(t.Indices[fromCase]) > 0
}

// ReverseIndex returns the referencedID → {caseID, ...} lookup over the
// whole tree, computing and caching it on first use after a mutation.
func (t *IndexTree) ReverseIndex() map[string]CaseIDSet {
	if t.reverse == nil {
		rev := make(map[string]CaseIDSet)
		for caseID, refs := range t.Indices {
			for _, referenced := range refs {
				set, ok := rev[referenced]
				if !ok {
					set = make(CaseIDSet)
					rev[referenced] = set
				}
				set.Add(caseID)
			}
		}
		t.reverse = rev
	}
	return t.reverse
}

// CasesThatDependOn returns every case holding a reference into caseID.
func (t *IndexTree) CasesThatDependOn(caseID string) CaseIDSet {
	return t.ReverseIndex()[caseID]
}

// Copy returns a deep copy of the tree with no cached reverse index.
func (t *IndexTree) Copy() *IndexTree {
	out := NewIndexTree()
	for caseID, refs := range t.Indices {
		dst := make(map[string]string, len(refs))
		for identifier, referenced := range refs {
			dst[identifier] = referenced
		}
		out.Indices[caseID] = dst
	}
	return out
}

// GetAllDependencies returns the full dependency closure of caseID: a
// breadth-first walk following incoming child references, incoming
// extension references and outgoing extension references. A visited set
// guarantees termination on cyclic or malformed graphs.
func GetAllDependencies(caseID string, childTree, extensionTree *IndexTree) CaseIDSet {
	all := make(CaseIDSet)
	queue := []string{caseID}
	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if all.Has(current) {
			continue
		}
		all.Add(current)

		next := make(CaseIDSet)
		for id := range extensionTree.CasesThatDependOn(current) {
			next.Add(id)
		}
		for id := range childTree.CasesThatDependOn(current) {
			next.Add(id)
		}
		for _, referenced := range extensionTree.IndicesOf(current) {
			next.Add(referenced)
		}
		for id := range next {
			if !all.Has(id) {
				queue = append(queue, id)
			}
		}
	}
	return all
}

// GetAllOutgoingCases returns the closure of caseID following only outgoing
// child and outgoing extension references: the case's structural ancestry.
func GetAllOutgoingCases(caseID string, childTree, extensionTree *IndexTree) CaseIDSet {
	all := NewCaseIDSet(caseID)
	queue := []string{caseID}
	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, referenced := range childTree.IndicesOf(current) {
			if !all.Has(referenced) {
				all.Add(referenced)
				queue = append(queue, referenced)
			}
		}
		for _, referenced := range extensionTree.IndicesOf(current) {
			if !all.Has(referenced) {
				all.Add(referenced)
				queue = append(queue, referenced)
			}
		}
	}
	return all
}

// TraverseIncomingExtensions returns the closure of caseID following only
// incoming extension references, refusing to cross into closed cases.
func TraverseIncomingExtensions(caseID string, extensionTree *IndexTree, closedCases CaseIDSet) CaseIDSet {
	all := NewCaseIDSet(caseID)
	queue := []string{caseID}
	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for id := range extensionTree.CasesThatDependOn(current) {
			if closedCases.Has(id) || all.Has(id) {
				continue
			}
			all.Add(id)
			queue = append(queue, id)
		}
	}
	return all
}
