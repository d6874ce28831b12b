package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"refdata-backend/application/commands"
	"refdata-backend/application/ports"
	"refdata-backend/domain/events"
)

// ClearReferenceDataHandler handles bulk cache invalidation
type ClearReferenceDataHandler struct {
	refData  ports.ReferenceData
	eventBus ports.EventBus
	clock    ports.Clock
	logger   *zap.Logger
}

// NewClearReferenceDataHandler creates a new clear handler
func NewClearReferenceDataHandler(
	refData ports.ReferenceData,
	eventBus ports.EventBus,
	clock ports.Clock,
	logger *zap.Logger,
) *ClearReferenceDataHandler {
	return &ClearReferenceDataHandler{
		refData:  refData,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// Handle executes the clear command
func (h *ClearReferenceDataHandler) Handle(ctx context.Context, cmd commands.ClearReferenceDataCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	h.refData.ClearAll(ctx)

	if h.eventBus != nil {
		event := events.NewReferenceDataCleared(cmd.RequestedBy, h.clock.Now())
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Error("Failed to publish cache cleared event", zap.Error(err))
		}
	}

	h.logger.Info("Reference-data cache cleared",
		zap.String("requestedBy", cmd.RequestedBy),
	)
	return nil
}
