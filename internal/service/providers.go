// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// restoreDocument is the JSON envelope a device receives. Sections appear in
// provider registration order, so the device can apply them as a stream.
type restoreDocument struct {
	StateID     string            `json:"state_id"`
	StateHash   string            `json:"state_hash"`
	GeneratedAt time.Time         `json:"generated_at"`
	// Version echoes the output version the device asked for.
	Version  string            `json:"version,omitempty"`
	Sections []documentSection `json:"sections"`
}

type documentSection struct {
	Name string          `json:"name"`
	Body json.RawMessage `json:"body"`
}

// syncMetaProvider emits the checkpoint bookkeeping the device echoes back
// on its next restore.
type syncMetaProvider struct{}

func (syncMetaProvider) Name() string { return "sync_meta" }

func (syncMetaProvider) Contribute(_ context.Context, build *PayloadBuild) (json.RawMessage, error) {
	meta := struct {
		StateID         string `json:"state_id"`
		PreviousStateID string `json:"previous_state_id,omitempty"`
		CaseCount       int    `json:"case_count"`
	}{
		StateID:         build.State.ID,
		PreviousStateID: build.State.PreviousStateID,
		CaseCount:       build.State.CaseCount(),
	}
	return json.Marshal(meta)
}

// registrationProvider emits the user registration block.
type registrationProvider struct{}

func (registrationProvider) Name() string { return "registration" }

func (registrationProvider) Contribute(_ context.Context, build *PayloadBuild) (json.RawMessage, error) {
	reg := struct {
		Domain     string   `json:"domain"`
		UserID     string   `json:"user_id"`
		DeviceID   string   `json:"device_id,omitempty"`
		AppVersion string   `json:"app_version,omitempty"`
		OwnerIDs   []string `json:"owner_ids"`
	}{
		Domain:     build.State.Domain,
		UserID:     build.State.UserID,
		DeviceID:   build.State.DeviceID,
		AppVersion: build.Version,
		OwnerIDs:   build.State.OwnerIDs.Sorted(),
	}
	return json.Marshal(reg)
}

// caseProvider emits the case elements. An initial restore carries the whole
// footprint; an incremental restore carries only the cases the batch touched
// that the device still holds.
type caseProvider struct {
	oracle CaseOracle
}

func (caseProvider) Name() string { return "cases" }

func (p caseProvider) Contribute(ctx context.Context, build *PayloadBuild) (json.RawMessage, error) {
	var ids []string
	if build.Request.Initial() {
		ids = build.State.CaseIDsOnPhone.Sorted()
	} else {
		seen := make(map[string]struct{}, len(build.Updates))
		for _, u := range build.Updates {
			if _, ok := seen[u.CaseID]; ok {
				continue
			}
			seen[u.CaseID] = struct{}{}
			if build.State.IsHoldingCase(u.CaseID) {
				ids = append(ids, u.CaseID)
			}
		}
	}
	if len(ids) == 0 {
		return json.RawMessage("[]"), nil
	}
	snapshots, err := p.oracle.CaseSnapshots(ctx, build.State.Domain, ids)
	if err != nil {
		return nil, fmt.Errorf("loading case snapshots: %w", err)
	}
	return json.Marshal(snapshots)
}

// fixtureProvider emits the reference data elements. A state with no
// fixture source configured skips the section.
type fixtureProvider struct {
	source FixtureSource
}

func (fixtureProvider) Name() string { return "fixtures" }

func (p fixtureProvider) Contribute(ctx context.Context, build *PayloadBuild) (json.RawMessage, error) {
	if p.source == nil {
		return nil, nil
	}
	fixtures, err := p.source.Fixtures(ctx, build.State.Domain, build.State.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil, nil
	}
	return json.Marshal(fixtures)
}
