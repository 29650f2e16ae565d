package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/core/ports/driving"
	"github.com/custodia-labs/harvest/internal/logger"
	"github.com/custodia-labs/harvest/internal/metrics"
)

// Ensure HarvestOrchestrator implements the interface.
var _ driving.HarvestService = (*HarvestOrchestrator)(nil)

// HarvestOrchestrator drains harvesters into sinks and keeps their checkpoints.
type HarvestOrchestrator struct {
	syncStore driven.SyncStateStore
	now       func() time.Time

	// Status tracking
	mu             sync.RWMutex
	activeHarvests map[string]*driving.HarvestStatus
}

// NewHarvestOrchestrator creates a new harvest orchestrator.
func NewHarvestOrchestrator(syncStore driven.SyncStateStore) *HarvestOrchestrator {
	return &HarvestOrchestrator{
		syncStore:      syncStore,
		now:            time.Now,
		activeHarvests: make(map[string]*driving.HarvestStatus),
	}
}

// Run harvests one source. The checkpoint is the explicit From date if any,
// else the stored checkpoint when resuming, else the full-harvest sentinel.
// The newest update time emitted is stored only when the harvest completes;
// a failed run leaves the stored checkpoint untouched so it can be retried.
func (o *HarvestOrchestrator) Run(ctx context.Context, harvester driven.Harvester, sink driven.Sink, req driving.HarvestRequest) (*driving.HarvestResult, error) {
	sourceID := domain.SourceKey(harvester.Name(), harvester.Origin())

	category := req.Category
	if category == "" {
		categories := harvester.Categories()
		if len(categories) == 0 {
			return nil, fmt.Errorf("%w: %s produces no category", domain.ErrUnsupportedCategory, harvester.Name())
		}
		category = categories[0]
	}

	checkpoint, err := o.resolveCheckpoint(ctx, sourceID, harvester, req)
	if err != nil {
		return nil, err
	}

	status := &driving.HarvestStatus{SourceID: sourceID, Running: true}
	if !o.startHarvest(sourceID, status) {
		return nil, fmt.Errorf("%w: %s", domain.ErrHarvestInProgress, sourceID)
	}
	defer o.clearStatus(sourceID)

	logger.Section(fmt.Sprintf("Harvest %s", sourceID))
	logger.Info("Harvesting %s of %s from %s", category, harvester.Origin(), checkpoint)

	result := &driving.HarvestResult{
		SourceID:      sourceID,
		Checkpoint:    checkpoint,
		NewCheckpoint: checkpoint.Time(),
	}

	for env, err := range harvester.Harvest(ctx, category, checkpoint) {
		if err != nil {
			logger.Error("Harvest of %s aborted after %d envelopes: %v", sourceID, result.Emitted, err)
			return result, fmt.Errorf("harvest %s: %w", sourceID, err)
		}
		if err := sink.Write(ctx, env); err != nil {
			return result, fmt.Errorf("write envelope: %w", err)
		}

		result.Emitted++
		if updated := updatedOn(env); updated.After(result.NewCheckpoint) {
			result.NewCheckpoint = updated
		}
		o.setEmitted(sourceID, result.Emitted)
		metrics.ObserveEnvelope(harvester.Name(), string(env.Category))
	}

	if harvester.Capabilities().SupportsResume && !req.Replay {
		state := domain.SyncState{
			SourceID:   sourceID,
			Checkpoint: result.NewCheckpoint,
			LastSync:   o.now().UTC(),
			Items:      result.Emitted,
		}
		if err := o.syncStore.Save(ctx, state); err != nil {
			return result, fmt.Errorf("save sync state: %w", err)
		}
		metrics.SetCheckpoint(harvester.Name(), result.NewCheckpoint)
	}

	logger.Info("Harvest of %s complete: %d envelopes, checkpoint %s",
		sourceID, result.Emitted, result.NewCheckpoint.UTC().Format(time.RFC3339))
	return result, nil
}

// Status returns harvest status for a source.
func (o *HarvestOrchestrator) Status(_ context.Context, sourceID string) (*driving.HarvestStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeHarvests[sourceID]; ok {
		// Copy so callers never race with the running harvest.
		s := *status
		return &s, nil
	}

	return &driving.HarvestStatus{
		SourceID: sourceID,
		Running:  false,
	}, nil
}

func (o *HarvestOrchestrator) resolveCheckpoint(ctx context.Context, sourceID string, harvester driven.Harvester, req driving.HarvestRequest) (domain.Checkpoint, error) {
	if req.From != nil {
		return domain.ResolveCheckpoint(req.From), nil
	}
	if !req.Resume || req.Replay || !harvester.Capabilities().SupportsResume {
		return domain.FullHarvest(), nil
	}

	state, err := o.syncStore.Get(ctx, sourceID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.FullHarvest(), nil
	}
	if err != nil {
		return domain.Checkpoint{}, fmt.Errorf("get sync state: %w", err)
	}

	logger.Debug("Resuming %s from stored checkpoint %s", sourceID, state.Checkpoint.Format(time.RFC3339Nano))
	return domain.ResolveCheckpoint(&state.Checkpoint), nil
}

func (o *HarvestOrchestrator) startHarvest(sourceID string, status *driving.HarvestStatus) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, running := o.activeHarvests[sourceID]; running {
		return false
	}
	o.activeHarvests[sourceID] = status
	return true
}

func (o *HarvestOrchestrator) setEmitted(sourceID string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.activeHarvests[sourceID]; ok {
		status.Emitted = n
	}
}

func (o *HarvestOrchestrator) clearStatus(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeHarvests, sourceID)
}

// updatedOn prefers the item's own timestamp over the epoch float, which
// cannot hold every nanosecond.
func updatedOn(env domain.Envelope) time.Time {
	if env.Data != nil {
		return env.Data.UpdatedOn().UTC()
	}
	return env.UpdatedOn()
}
