// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldsync/casesync/internal/cache"
	"github.com/fieldsync/casesync/internal/checksum"
	"github.com/fieldsync/casesync/internal/config"
	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/internal/metrics"
	"github.com/fieldsync/casesync/internal/store"
	"github.com/fieldsync/casesync/internal/workers"
	"github.com/fieldsync/casesync/models"
)

type restoreService struct {
	logger    *logger.Logger
	states    store.SyncStateRepository
	cache     cache.Cache
	queue     TaskQueue
	oracle    CaseOracle
	providers []PayloadProvider
	cfg       config.Restore
	version   string
}

// NewRestoreService wires the restore pipeline. The payload sections are
// fixed: sync metadata, registration, cases, then fixtures.
func NewRestoreService(
	states store.SyncStateRepository,
	payloadCache cache.Cache,
	queue TaskQueue,
	oracle CaseOracle,
	fixtures FixtureSource,
	cfg config.Restore,
	version string,
	log *logger.Logger,
) RestoreService {
	return &restoreService{
		logger: log,
		states: states,
		cache:  payloadCache,
		queue:  queue,
		oracle: oracle,
		providers: []PayloadProvider{
			syncMetaProvider{},
			registrationProvider{},
			caseProvider{oracle: oracle},
			fixtureProvider{source: fixtures},
		},
		cfg:     cfg,
		version: version,
	}
}

func (s *restoreService) Restore(ctx context.Context, req models.RestoreRequest) (models.RestoreResult, error) {
	log := s.logger.With().
		Str("func", "Restore").
		Str("domain", req.Domain).
		Str("user_id", req.UserID).
		Str("device_id", req.DeviceID).
		Logger()

	if err := validateRequest(req); err != nil {
		metrics.RestoreRequest(metrics.OutcomeRejected)
		return models.RestoreResult{}, err
	}

	prior, err := s.loadCheckpoint(ctx, req)
	if err != nil {
		metrics.RestoreRequest(metrics.OutcomeRejected)
		return models.RestoreResult{}, err
	}

	key := cache.PayloadKey(req.Domain, req.UserID, req.DeviceID, req.PriorStateID, req.Version)
	if req.Cache.Overwrite {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Msg("payload cache invalidation failed")
		}
	}
	if !req.Cache.Skip && !req.Cache.Force && !req.Cache.Overwrite {
		if payload, err := s.cachedPayload(ctx, key); err == nil {
			log.Info().Str("state_id", payload.StateID).Msg("restore served from cache")
			metrics.RestoreRequest(metrics.OutcomePayload)
			return models.RestoreResult{Payload: payload}, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Msg("payload cache read failed")
		}
	}

	if req.Async {
		return s.dispatchAsync(ctx, req, prior, key)
	}
	return s.generateAndRespond(ctx, req, prior, key)
}

func (s *restoreService) Checkpoint(ctx context.Context, domain, userID, deviceID string) (models.CheckpointInfo, error) {
	if domain == "" {
		return models.CheckpointInfo{}, ErrNoDomain
	}
	if userID == "" {
		return models.CheckpointInfo{}, ErrNoUserID
	}

	state, err := s.states.LastForDevice(ctx, domain, userID, deviceID)
	if err != nil {
		return models.CheckpointInfo{}, err
	}
	return models.CheckpointInfo{
		StateID:         state.ID,
		PreviousStateID: state.PreviousStateID,
		StateHash:       state.StateHash().String(),
		CaseCount:       state.CaseCount(),
		CreatedAt:       state.CreatedAt,
		LastSubmittedAt: state.LastSubmittedAt,
		HadStateError:   state.HadStateError,
	}, nil
}

func validateRequest(req models.RestoreRequest) error {
	if req.Domain == "" {
		return ErrNoDomain
	}
	if req.UserID == "" {
		return ErrNoUserID
	}
	return nil
}

// loadCheckpoint resolves and validates the prior sync state. An initial
// request returns (nil, nil). A hash mismatch either fails the restore or,
// in lenient mode, stamps the checkpoint and lets the restore proceed.
func (s *restoreService) loadCheckpoint(ctx context.Context, req models.RestoreRequest) (*models.SyncState, error) {
	if req.Initial() {
		return nil, nil
	}

	prior, err := s.states.Get(ctx, req.PriorStateID)
	if err != nil {
		if errors.Is(err, store.ErrSyncStateNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingCheckpoint, req.PriorStateID)
		}
		return nil, fmt.Errorf("loading sync state %s: %w", req.PriorStateID, err)
	}
	if prior.Domain != req.Domain || prior.UserID != req.UserID {
		return nil, ErrCheckpointOwnership
	}
	if prior.DeviceID != "" && req.DeviceID != "" && prior.DeviceID != req.DeviceID {
		return nil, ErrCheckpointOwnership
	}

	if req.StateHash == "" {
		return prior, nil
	}
	reported, err := checksum.Parse(req.StateHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedStateHash, req.StateHash)
	}
	if reported.Equal(prior.StateHash()) {
		return prior, nil
	}

	if !s.cfg.LenientHashMismatch {
		return nil, fmt.Errorf("%w: device reported %s", ErrStateMismatch, reported)
	}
	prior.RecordHashMismatch(reported, time.Now())
	if err := s.states.Save(ctx, prior); err != nil {
		return nil, fmt.Errorf("recording hash mismatch on %s: %w", prior.ID, err)
	}
	s.logger.Warn().
		Str("func", "loadCheckpoint").
		Str("state_id", prior.ID).
		Str("reported_hash", reported.String()).
		Str("expected_hash", prior.StateHash().String()).
		Msg("state hash mismatch tolerated, restoring from scratch")
	// A device whose footprint drifted cannot be patched incrementally.
	return nil, nil
}

func (s *restoreService) generateAndRespond(ctx context.Context, req models.RestoreRequest, prior *models.SyncState, key string) (models.RestoreResult, error) {
	payload, err := s.generate(ctx, req, prior)
	if err != nil {
		metrics.RestoreRequest(metrics.OutcomeError)
		return models.RestoreResult{}, errors.Join(ErrGenerationFailure, err)
	}

	shouldCache := !req.Cache.Skip &&
		(req.Cache.Overwrite || req.Cache.Force || payload.Duration >= s.cfg.CacheThreshold)
	if shouldCache {
		if err := s.storePayload(ctx, key, payload); err != nil {
			s.logger.Warn().Err(err).Str("func", "generateAndRespond").Msg("payload cache write failed")
		}
	}

	metrics.RestoreRequest(metrics.OutcomePayload)
	return models.RestoreResult{Payload: payload}, nil
}

// dispatchAsync hands generation to the background queue and answers with a
// pending response, unless the task finishes within the grace period. A full
// queue degrades to inline generation rather than turning the device away.
func (s *restoreService) dispatchAsync(ctx context.Context, req models.RestoreRequest, prior *models.SyncState, key string) (models.RestoreResult, error) {
	taskID := cache.TaskKey(req.Domain, req.UserID, req.DeviceID, req.PriorStateID)
	log := s.logger.With().Str("func", "dispatchAsync").Str("task_id", taskID).Logger()

	job := func(jobCtx context.Context) error {
		payload, err := s.generate(jobCtx, req, prior)
		if err != nil {
			return err
		}
		return s.storePayload(jobCtx, key, payload)
	}

	retryAfter := s.cfg.InitialRetryAfter
	switch err := s.queue.Submit(taskID, job); {
	case err == nil:
		log.Info().Msg("background generation dispatched")
	case errors.Is(err, workers.ErrTaskAlreadyRunning):
		retryAfter = s.cfg.PollRetryAfter
	case errors.Is(err, workers.ErrQueueFull):
		log.Warn().Msg("task queue full, generating inline")
		return s.generateAndRespond(ctx, req, prior, key)
	default:
		metrics.RestoreRequest(metrics.OutcomeError)
		return models.RestoreResult{}, fmt.Errorf("dispatching generation task: %w", err)
	}

	status, waitErr := s.queue.Wait(ctx, taskID, s.cfg.AsyncGracePeriod)
	switch status {
	case workers.TaskDone:
		s.queue.Forget(taskID)
		if payload, err := s.cachedPayload(ctx, key); err == nil {
			metrics.RestoreRequest(metrics.OutcomePayload)
			return models.RestoreResult{Payload: payload}, nil
		}
		// Cached copy already evicted; the device will regenerate on poll.
	case workers.TaskFailed:
		s.queue.Forget(taskID)
		metrics.RestoreRequest(metrics.OutcomeError)
		return models.RestoreResult{}, errors.Join(ErrGenerationFailure, waitErr)
	}

	metrics.RestoreRequest(metrics.OutcomePending)
	return models.RestoreResult{
		Pending: &models.RestorePending{TaskID: taskID, RetryAfter: retryAfter},
	}, nil
}

// generate produces the payload and persists the new checkpoint. prior nil
// means building the device's footprint from scratch.
func (s *restoreService) generate(ctx context.Context, req models.RestoreRequest, prior *models.SyncState) (*models.RestorePayload, error) {
	start := time.Now()

	var (
		state   *models.SyncState
		updates []models.CaseUpdate
		kind    = metrics.KindInitial
		err     error
	)
	if prior == nil {
		state, err = s.buildInitialState(ctx, req)
	} else {
		kind = metrics.KindIncremental
		state, updates, err = s.buildIncrementalState(ctx, req, prior)
	}
	if err != nil {
		return nil, err
	}

	body, err := s.buildDocument(ctx, &PayloadBuild{
		Request: req,
		State:   state,
		Updates: updates,
		Version: s.version,
	})
	if err != nil {
		return nil, err
	}

	if err := s.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("saving sync state %s: %w", state.ID, err)
	}

	duration := time.Since(start)
	metrics.GenerationObserved(kind, duration)
	s.logger.Info().
		Str("func", "generate").
		Str("state_id", state.ID).
		Int("case_count", state.CaseCount()).
		Dur("duration", duration).
		Msg("restore payload generated")

	return &models.RestorePayload{
		StateID:     state.ID,
		StateHash:   state.StateHash().String(),
		Body:        body,
		GeneratedAt: start.UTC(),
		Duration:    duration,
	}, nil
}

// buildInitialState computes the device's footprint from scratch: every
// owned case, expanded along outgoing references and incoming extensions
// until the graph closes, then purged down to what the device may hold.
func (s *restoreService) buildInitialState(ctx context.Context, req models.RestoreRequest) (*models.SyncState, error) {
	owners, err := s.oracle.OwnerIDs(ctx, req.Domain, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving owner ids: %w", err)
	}

	state := models.NewSyncState(req.Domain, req.UserID, req.DeviceID, owners)
	state.Strict = s.cfg.StrictPurge

	frontier, err := s.oracle.OwnedCases(ctx, req.Domain, owners)
	if err != nil {
		return nil, fmt.Errorf("loading owned cases: %w", err)
	}

	seen := models.NewCaseIDSet()
	for len(frontier) > 0 {
		frontierIDs := make([]string, 0, len(frontier))
		referenced := models.NewCaseIDSet()
		for _, snap := range frontier {
			if seen.Has(snap.CaseID) {
				continue
			}
			seen.Add(snap.CaseID)
			frontierIDs = append(frontierIDs, snap.CaseID)
			state.SeedCase(snap)
			for _, index := range snap.Indices {
				if !index.IsDeletion() && !seen.Has(index.ReferencedID) {
					referenced.Add(index.ReferencedID)
				}
			}
		}
		if len(frontierIDs) == 0 {
			break
		}

		frontier = frontier[:0]
		if len(referenced) > 0 {
			targets, err := s.oracle.CaseSnapshots(ctx, req.Domain, referenced.Sorted())
			if err != nil {
				return nil, fmt.Errorf("expanding case references: %w", err)
			}
			frontier = append(frontier, targets...)
		}
		extensions, err := s.oracle.Extensions(ctx, req.Domain, frontierIDs)
		if err != nil {
			return nil, fmt.Errorf("expanding extension cases: %w", err)
		}
		for _, snap := range extensions {
			if !seen.Has(snap.CaseID) {
				frontier = append(frontier, snap)
			}
		}
	}

	if err := state.PurgeDependentCases(ctx); err != nil {
		return nil, fmt.Errorf("purging initial footprint: %w", err)
	}
	return state, nil
}

func (s *restoreService) buildIncrementalState(ctx context.Context, req models.RestoreRequest, prior *models.SyncState) (*models.SyncState, []models.CaseUpdate, error) {
	state := prior.Next()
	state.Strict = s.cfg.StrictPurge

	updates, err := s.oracle.UpdatesSince(ctx, req.Domain, state.OwnerIDs.Sorted(), prior.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("loading case updates: %w", err)
	}
	mutated, err := state.ApplyUpdates(ctx, updates)
	if err != nil {
		return nil, nil, fmt.Errorf("applying case updates: %w", err)
	}
	if !mutated {
		s.logger.Debug().
			Str("func", "buildIncrementalState").
			Str("state_id", state.ID).
			Int("updates", len(updates)).
			Msg("update batch left the footprint unchanged")
	}
	return state, updates, nil
}

func (s *restoreService) buildDocument(ctx context.Context, build *PayloadBuild) ([]byte, error) {
	doc := restoreDocument{
		StateID:     build.State.ID,
		StateHash:   build.State.StateHash().String(),
		GeneratedAt: time.Now().UTC(),
		Version:     build.Request.Version,
		Sections:    make([]documentSection, 0, len(s.providers)),
	}
	for _, provider := range s.providers {
		body, err := provider.Contribute(ctx, build)
		if err != nil {
			return nil, fmt.Errorf("building %s section: %w", provider.Name(), err)
		}
		if body == nil {
			continue
		}
		doc.Sections = append(doc.Sections, documentSection{Name: provider.Name(), Body: body})
	}
	return json.Marshal(doc)
}

func (s *restoreService) cachedPayload(ctx context.Context, key string) (*models.RestorePayload, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			metrics.CacheOperation("get", metrics.ResultMiss)
		} else {
			metrics.CacheOperation("get", metrics.ResultError)
		}
		return nil, err
	}
	var payload models.RestorePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		metrics.CacheOperation("get", metrics.ResultError)
		return nil, fmt.Errorf("decoding cached payload: %w", err)
	}
	metrics.CacheOperation("get", metrics.ResultHit)
	payload.FromCache = true
	return &payload, nil
}

func (s *restoreService) storePayload(ctx context.Context, key string, payload *models.RestorePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload for cache: %w", err)
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		metrics.CacheOperation("set", metrics.ResultError)
		return err
	}
	metrics.CacheOperation("set", metrics.ResultHit)
	return nil
}
