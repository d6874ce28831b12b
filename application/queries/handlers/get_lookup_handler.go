package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"refdata-backend/application/ports"
	"refdata-backend/application/queries"
	"refdata-backend/domain/lookup"
)

// GetLookupHandler handles reference-data lookup queries
type GetLookupHandler struct {
	refData ports.ReferenceData
	logger  *zap.Logger
}

// NewGetLookupHandler creates a new lookup query handler
func NewGetLookupHandler(refData ports.ReferenceData, logger *zap.Logger) *GetLookupHandler {
	return &GetLookupHandler{
		refData: refData,
		logger:  logger,
	}
}

// Handle executes the lookup query
func (h *GetLookupHandler) Handle(ctx context.Context, query queries.GetLookupQuery) (*queries.GetLookupResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var records lookup.Collection
	var err error

	switch query.Kind {
	case lookup.KindPropertyTypes:
		records, err = h.refData.GetPropertyTypes(ctx, query.ForceRefresh)
	case lookup.KindAmenities:
		records, err = h.refData.GetAmenities(ctx, query.ForceRefresh)
	case lookup.KindStates:
		records, err = h.refData.GetStates(ctx, query.ForceRefresh)
	case lookup.KindCitiesByState:
		records, err = h.refData.GetCitiesByState(ctx, query.State, query.ForceRefresh)
	case lookup.KindFacingDirections:
		records, err = h.refData.GetFacingDirections(ctx, query.ForceRefresh)
	default:
		return nil, fmt.Errorf("unknown lookup kind %q", query.Kind)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Lookup query served",
		zap.String("kind", string(query.Kind)),
		zap.String("state", query.State),
		zap.Bool("forceRefresh", query.ForceRefresh),
		zap.Int("recordCount", len(records)),
	)

	return queries.NewGetLookupResult(query, records), nil
}
