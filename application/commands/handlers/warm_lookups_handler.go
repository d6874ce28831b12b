package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"refdata-backend/application/commands"
	"refdata-backend/application/ports"
	"refdata-backend/domain/events"
	"refdata-backend/domain/lookup"
)

// WarmLookupsHandler pre-populates the reference-data cache so the
// first mobile client of the day never pays the upstream latency.
type WarmLookupsHandler struct {
	refData  ports.ReferenceData
	eventBus ports.EventBus
	clock    ports.Clock
	logger   *zap.Logger
}

// NewWarmLookupsHandler creates a new warm-up handler
func NewWarmLookupsHandler(
	refData ports.ReferenceData,
	eventBus ports.EventBus,
	clock ports.Clock,
	logger *zap.Logger,
) *WarmLookupsHandler {
	return &WarmLookupsHandler{
		refData:  refData,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// Handle executes the warm-up command. Each lookup is warmed
// independently; one failing kind does not abort the rest.
func (h *WarmLookupsHandler) Handle(ctx context.Context, cmd commands.WarmLookupsCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	type target struct {
		kind  lookup.Kind
		state string
		fetch func(context.Context) (lookup.Collection, error)
	}

	targets := []target{
		{kind: lookup.KindPropertyTypes, fetch: func(ctx context.Context) (lookup.Collection, error) {
			return h.refData.GetPropertyTypes(ctx, cmd.ForceRefresh)
		}},
		{kind: lookup.KindAmenities, fetch: func(ctx context.Context) (lookup.Collection, error) {
			return h.refData.GetAmenities(ctx, cmd.ForceRefresh)
		}},
		{kind: lookup.KindStates, fetch: func(ctx context.Context) (lookup.Collection, error) {
			return h.refData.GetStates(ctx, cmd.ForceRefresh)
		}},
		{kind: lookup.KindFacingDirections, fetch: func(ctx context.Context) (lookup.Collection, error) {
			return h.refData.GetFacingDirections(ctx, cmd.ForceRefresh)
		}},
	}
	for _, s := range cmd.States {
		state := s
		targets = append(targets, target{
			kind:  lookup.KindCitiesByState,
			state: lookup.NormalizeState(state),
			fetch: func(ctx context.Context) (lookup.Collection, error) {
				return h.refData.GetCitiesByState(ctx, state, cmd.ForceRefresh)
			},
		})
	}

	var published []events.DomainEvent
	var failed int
	for _, t := range targets {
		records, err := t.fetch(ctx)
		if err != nil {
			failed++
			h.logger.Warn("Lookup warm-up failed",
				zap.String("kind", string(t.kind)),
				zap.String("state", t.state),
				zap.Error(err),
			)
			continue
		}
		published = append(published, events.NewLookupRefreshed(t.kind, t.state, len(records), h.clock.Now()))
	}

	if len(published) > 0 && h.eventBus != nil {
		if err := h.eventBus.PublishBatch(ctx, published); err != nil {
			// Warming succeeded; a lost notification is not worth failing for
			h.logger.Error("Failed to publish warm-up events", zap.Error(err))
		}
	}

	h.logger.Info("Reference-data warm-up finished",
		zap.Int("warmed", len(published)),
		zap.Int("failed", failed),
	)

	if failed == len(targets) {
		return fmt.Errorf("warm-up failed for all %d lookups", failed)
	}
	return nil
}
