// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package models

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildState assembles a state holding the given primary and dependent
// cases with the given index edges, owned by "owner".
func buildState(primary, dependent []string, child, extension map[string]map[string]string) *SyncState {
	s := NewSyncState("test-domain", "user-1", "device-1", []string{"owner"})
	for _, id := range primary {
		s.CaseIDsOnPhone.Add(id)
	}
	for _, id := range dependent {
		s.CaseIDsOnPhone.Add(id)
		s.DependentCaseIDs.Add(id)
	}
	for fromCase, refs := range child {
		for identifier, toCase := range refs {
			s.ChildIndexTree.SetIndex(fromCase, identifier, toCase)
		}
	}
	for fromCase, refs := range extension {
		for identifier, toCase := range refs {
			s.ExtensionIndexTree.SetIndex(fromCase, identifier, toCase)
		}
	}
	return s
}

func TestPurgeChildCascadesToDependentParent(t *testing.T) {
	s := buildState(
		[]string{"child"}, []string{"parent"},
		map[string]map[string]string{"child": {"parent": "parent"}},
		nil,
	)

	require.NoError(t, s.Purge(context.Background(), "child"))
	assert.Empty(t, s.CaseIDsOnPhone)
	assert.Empty(t, s.DependentCaseIDs)
}

func TestPurgeChildKeepsParentWithOtherLiveChild(t *testing.T) {
	s := buildState(
		[]string{"c1", "c2"}, []string{"parent"},
		map[string]map[string]string{
			"c1": {"parent": "parent"},
			"c2": {"parent": "parent"},
		},
		nil,
	)

	require.NoError(t, s.Purge(context.Background(), "c1"))
	assert.ElementsMatch(t, []string{"c2", "parent"}, s.CaseIDsOnPhone.Sorted())
	assert.ElementsMatch(t, []string{"parent"}, s.DependentCaseIDs.Sorted())
}

func TestPurgeLinearChain(t *testing.T) {
	s := buildState(
		[]string{"a"}, []string{"b", "c"},
		map[string]map[string]string{
			"a": {"parent": "b"},
			"b": {"parent": "c"},
		},
		nil,
	)

	require.NoError(t, s.Purge(context.Background(), "a"))
	assert.Empty(t, s.CaseIDsOnPhone)
}

func TestPurgeCircularLoop(t *testing.T) {
	s := buildState(
		nil, []string{"a", "b", "c"},
		map[string]map[string]string{
			"a": {"parent": "b"},
			"b": {"parent": "c"},
			"c": {"parent": "a"},
		},
		nil,
	)

	require.NoError(t, s.Purge(context.Background(), "a"))
	assert.Empty(t, s.CaseIDsOnPhone)
}

func TestPurgeSelfIndexingCase(t *testing.T) {
	s := buildState(
		[]string{"a"}, nil,
		map[string]map[string]string{"a": {"parent": "a"}},
		nil,
	)

	require.NoError(t, s.Purge(context.Background(), "a"))
	assert.Empty(t, s.CaseIDsOnPhone)
}

func TestPurgeClosedHostDropsExtensionChain(t *testing.T) {
	s := buildState(
		[]string{"host"}, []string{"e1", "e2"},
		nil,
		map[string]map[string]string{
			"e1": {"host": "host"},
			"e2": {"host": "e1"},
		},
	)
	s.ClosedCases.Add("host")

	require.NoError(t, s.Purge(context.Background(), "host"))
	assert.Empty(t, s.CaseIDsOnPhone)
}

func TestPurgeExtensionOfLiveHostSurvives(t *testing.T) {
	s := buildState(
		[]string{"host"}, []string{"ext"},
		nil,
		map[string]map[string]string{"ext": {"host": "host"}},
	)

	require.NoError(t, s.Purge(context.Background(), "ext"))
	assert.ElementsMatch(t, []string{"host", "ext"}, s.CaseIDsOnPhone.Sorted())
	assert.ElementsMatch(t, []string{"ext"}, s.DependentCaseIDs.Sorted())
}

func TestPurgeExtensionWithOpenChildSurvives(t *testing.T) {
	// a primary child of the extension keeps the whole chain alive
	s := buildState(
		[]string{"child"}, []string{"ext", "host"},
		map[string]map[string]string{"child": {"parent": "ext"}},
		map[string]map[string]string{"ext": {"host": "host"}},
	)

	require.NoError(t, s.Purge(context.Background(), "ext"))
	assert.ElementsMatch(t, []string{"child", "ext", "host"}, s.CaseIDsOnPhone.Sorted())
}

func TestPurgeClosedExtensionCutsChainBelow(t *testing.T) {
	s := buildState(
		[]string{"host"}, []string{"e1", "e2"},
		nil,
		map[string]map[string]string{
			"e1": {"host": "host"},
			"e2": {"host": "e1"},
		},
	)
	s.ClosedCases.Add("e1")

	require.NoError(t, s.Purge(context.Background(), "e1"))
	assert.ElementsMatch(t, []string{"host"}, s.CaseIDsOnPhone.Sorted())
}

func TestPurgeStrictModeFailsOnMissingTarget(t *testing.T) {
	s := buildState(
		nil, []string{"parent"},
		map[string]map[string]string{"ghost": {"parent": "parent"}},
		nil,
	)
	s.Strict = true

	// "ghost" appears in the tree but was never put on the phone
	err := s.Purge(context.Background(), "parent")
	var integrityErr *SyncIntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, "ghost", integrityErr.CaseID)
}

func TestPurgeLenientModeRepairsMissingTarget(t *testing.T) {
	s := buildState(
		nil, []string{"parent"},
		map[string]map[string]string{"ghost": {"parent": "parent"}},
		nil,
	)

	require.NoError(t, s.Purge(context.Background(), "parent"))
	assert.Empty(t, s.CaseIDsOnPhone)
	assert.False(t, s.ChildIndexTree.HasOutgoing("ghost"))
}

func TestPurgeDependentCases(t *testing.T) {
	// "stale" has no surviving referrer; "kept" is the parent of a primary
	s := buildState(
		[]string{"child"}, []string{"kept", "stale"},
		map[string]map[string]string{"child": {"parent": "kept"}},
		nil,
	)

	require.NoError(t, s.PurgeDependentCases(context.Background()))
	assert.ElementsMatch(t, []string{"child", "kept"}, s.CaseIDsOnPhone.Sorted())
}

func TestApplyUpdatesEmptyBatchIsNoop(t *testing.T) {
	s := buildState([]string{"a", "b"}, nil, nil, nil)
	before := s.StateHash()

	changed, err := s.ApplyUpdates(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, s.StateHash().Equal(before))
}

func TestApplyUpdatesLiveCreation(t *testing.T) {
	s := buildState(nil, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "a", Actions: []CaseAction{{Type: ActionCreate, OwnerID: OwnerOf("owner")}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ElementsMatch(t, []string{"a"}, s.CaseIDsOnPhone.Sorted())
	assert.Empty(t, s.DependentCaseIDs)
}

func TestApplyUpdatesUnownedCreationIsIgnored(t *testing.T) {
	s := buildState(nil, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "a", Actions: []CaseAction{{Type: ActionCreate, OwnerID: OwnerOf("somebody-else")}}},
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, s.CaseIDsOnPhone)
}

func TestApplyUpdatesOwnershipTransferAwayPurges(t *testing.T) {
	s := buildState([]string{"a"}, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "a", Actions: []CaseAction{{Type: ActionUpdate, OwnerID: OwnerOf("somebody-else")}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, s.CaseIDsOnPhone)
}

func TestApplyUpdatesCloseWithoutReferencesRemoves(t *testing.T) {
	s := buildState([]string{"a"}, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "a", Actions: []CaseAction{{Type: ActionClose}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, s.CaseIDsOnPhone)
	assert.True(t, s.ClosedCases.Has("a"))
}

func TestApplyUpdatesClosedParentOfLiveChildStays(t *testing.T) {
	s := buildState(
		[]string{"child", "parent"}, nil,
		map[string]map[string]string{"child": {"parent": "parent"}},
		nil,
	)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "parent", Actions: []CaseAction{{Type: ActionClose}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ElementsMatch(t, []string{"child", "parent"}, s.CaseIDsOnPhone.Sorted())
	assert.ElementsMatch(t, []string{"parent"}, s.DependentCaseIDs.Sorted())
}

func TestApplyUpdatesChildIndexRegistersParentAsDependent(t *testing.T) {
	s := buildState([]string{"child"}, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "child", Actions: []CaseAction{{
			Type: ActionIndex,
			Indices: []CaseIndex{{
				CaseID: "child", Identifier: "parent",
				ReferencedID: "parent", Relationship: RelationshipChild,
			}},
		}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ElementsMatch(t, []string{"child", "parent"}, s.CaseIDsOnPhone.Sorted())
	assert.ElementsMatch(t, []string{"parent"}, s.DependentCaseIDs.Sorted())
}

func TestApplyUpdatesUnownedExtensionIsAdmittedAsDependent(t *testing.T) {
	s := buildState([]string{"host"}, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "ext", Actions: []CaseAction{{
			Type: ActionIndex,
			Indices: []CaseIndex{{
				CaseID: "ext", Identifier: "host",
				ReferencedID: "host", Relationship: RelationshipExtension,
			}},
		}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ElementsMatch(t, []string{"ext", "host"}, s.CaseIDsOnPhone.Sorted())
	assert.ElementsMatch(t, []string{"ext"}, s.DependentCaseIDs.Sorted())
}

func TestApplyUpdatesExtensionOfUnheldHostIsDropped(t *testing.T) {
	// nothing ties the chain to an owned case, so admission is undone by
	// the purge pass
	s := buildState(nil, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "ext", Actions: []CaseAction{{
			Type: ActionIndex,
			Indices: []CaseIndex{{
				CaseID: "ext", Identifier: "host",
				ReferencedID: "host", Relationship: RelationshipExtension,
			}},
		}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, s.CaseIDsOnPhone)
}

func TestApplyUpdatesIndexDeletionClearsExtensionEdge(t *testing.T) {
	// a deletion record carries neither target nor relationship; the
	// identifier must be cleared even when the stored edge is an extension
	s := buildState(
		[]string{"ext"}, []string{"host"},
		nil,
		map[string]map[string]string{"ext": {"host-idx": "host"}},
	)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "ext", Actions: []CaseAction{{
			Type:    ActionIndex,
			Indices: []CaseIndex{{CaseID: "ext", Identifier: "host-idx"}},
		}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, s.ExtensionIndexTree.IndicesOf("ext"))

	// with the edge gone, nothing justifies keeping the host
	require.NoError(t, s.Purge(context.Background(), "host"))
	assert.ElementsMatch(t, []string{"ext"}, s.CaseIDsOnPhone.Sorted())
}

func TestApplyUpdatesExtensionChainOnLiveHost(t *testing.T) {
	// e2 extends e1 extends host; everything rides on the owned host even
	// though the batch lists the chain bottom-up
	s := buildState([]string{"host"}, nil, nil, nil)

	changed, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "e2", Actions: []CaseAction{{
			Type: ActionIndex,
			Indices: []CaseIndex{{
				CaseID: "e2", Identifier: "host",
				ReferencedID: "e1", Relationship: RelationshipExtension,
			}},
		}}},
		{CaseID: "e1", Actions: []CaseAction{{
			Type: ActionIndex,
			Indices: []CaseIndex{{
				CaseID: "e1", Identifier: "host",
				ReferencedID: "host", Relationship: RelationshipExtension,
			}},
		}}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ElementsMatch(t, []string{"e1", "e2", "host"}, s.CaseIDsOnPhone.Sorted())
	assert.ElementsMatch(t, []string{"e1", "e2"}, s.DependentCaseIDs.Sorted())
}

func TestSortDeferredUpdatesReferrerFirst(t *testing.T) {
	deferred := []*caseDelta{
		{caseID: "referenced"},
		{caseID: "referrer", indicesToAdd: []CaseIndex{{
			CaseID: "referrer", Identifier: "host",
			ReferencedID: "referenced", Relationship: RelationshipExtension,
		}}},
	}

	sorted := sortDeferredUpdates(deferred, NewIndexTree(), NewIndexTree())
	require.Len(t, sorted, 2)
	assert.Equal(t, "referrer", sorted[0].caseID)
	assert.Equal(t, "referenced", sorted[1].caseID)
}

func TestSortDeferredUpdatesCycleIsDeterministic(t *testing.T) {
	edge := func(from, to string) []CaseIndex {
		return []CaseIndex{{
			CaseID: from, Identifier: "host",
			ReferencedID: to, Relationship: RelationshipExtension,
		}}
	}
	deferred := []*caseDelta{
		{caseID: "b", indicesToAdd: edge("b", "a")},
		{caseID: "a", indicesToAdd: edge("a", "b")},
	}

	sorted := sortDeferredUpdates(deferred, NewIndexTree(), NewIndexTree())
	require.Len(t, sorted, 2)
	assert.Equal(t, "a", sorted[0].caseID)
	assert.Equal(t, "b", sorted[1].caseID)
}

func TestApplyUpdatesIsIdempotent(t *testing.T) {
	updates := []CaseUpdate{
		{CaseID: "a", Actions: []CaseAction{{Type: ActionCreate, OwnerID: OwnerOf("owner")}}},
		{CaseID: "b", Actions: []CaseAction{
			{Type: ActionCreate, OwnerID: OwnerOf("owner")},
			{Type: ActionIndex, Indices: []CaseIndex{{
				CaseID: "b", Identifier: "parent",
				ReferencedID: "a", Relationship: RelationshipChild,
			}}},
		}},
	}

	s := buildState(nil, nil, nil, nil)
	_, err := s.ApplyUpdates(context.Background(), updates)
	require.NoError(t, err)
	first := s.StateHash()

	_, err = s.ApplyUpdates(context.Background(), updates)
	require.NoError(t, err)
	assert.True(t, s.StateHash().Equal(first))
	assert.ElementsMatch(t, []string{"a", "b"}, s.CaseIDsOnPhone.Sorted())
}

func TestStateHashChangesWithFootprint(t *testing.T) {
	s := buildState([]string{"a"}, nil, nil, nil)
	before := s.StateHash()
	require.False(t, before.IsEmpty())

	_, err := s.ApplyUpdates(context.Background(), []CaseUpdate{
		{CaseID: "b", Actions: []CaseAction{{Type: ActionCreate, OwnerID: OwnerOf("owner")}}},
	})
	require.NoError(t, err)
	assert.False(t, s.StateHash().Equal(before))
}

func TestNextChainsAndCopies(t *testing.T) {
	s := buildState(
		[]string{"child"}, []string{"parent"},
		map[string]map[string]string{"child": {"parent": "parent"}},
		nil,
	)
	s.PurgedCases.Add("gone")

	next := s.Next()
	assert.Equal(t, s.ID, next.PreviousStateID)
	assert.NotEqual(t, s.ID, next.ID)
	assert.Equal(t, s.CaseIDsOnPhone, next.CaseIDsOnPhone)
	assert.Empty(t, next.PurgedCases, "the purge ledger does not carry over")

	// the copies are independent
	next.CaseIDsOnPhone.Add("new")
	next.ChildIndexTree.SetIndex("new", "parent", "child")
	assert.False(t, s.CaseIDsOnPhone.Has("new"))
	assert.False(t, s.ChildIndexTree.HasOutgoing("new"))
}

func TestSyncStateDocumentRoundTrip(t *testing.T) {
	s := buildState(
		[]string{"child"}, []string{"parent"},
		map[string]map[string]string{"child": {"parent": "parent"}},
		map[string]map[string]string{"ext": {"host": "child"}},
	)
	s.ClosedCases.Add("closed-one")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded SyncState
	require.NoError(t, json.Unmarshal(data, &decoded))
	decoded.Normalize()

	assert.Equal(t, s.CaseIDsOnPhone, decoded.CaseIDsOnPhone)
	assert.Equal(t, s.DependentCaseIDs, decoded.DependentCaseIDs)
	assert.Equal(t, s.ChildIndexTree.Indices, decoded.ChildIndexTree.Indices)
	assert.Equal(t, s.ExtensionIndexTree.Indices, decoded.ExtensionIndexTree.Indices)
	assert.Equal(t, s.ClosedCases, decoded.ClosedCases)
	assert.True(t, decoded.StateHash().Equal(s.StateHash()))
}
