package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"refdata-backend/application/queries"
	querybus "refdata-backend/application/queries/bus"
	"refdata-backend/domain/lookup"
	"refdata-backend/pkg/common"
	apperrors "refdata-backend/pkg/errors"
	"refdata-backend/pkg/utils"
)

// LookupHandler handles the public reference-data HTTP requests
type LookupHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *LookupHandler {
	return &LookupHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// GetPropertyTypes handles GET /lookups/property-types
func (h *LookupHandler) GetPropertyTypes(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, lookup.KindPropertyTypes, "")
}

// GetAmenities handles GET /lookups/amenities
func (h *LookupHandler) GetAmenities(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, lookup.KindAmenities, "")
}

// GetStates handles GET /lookups/states
func (h *LookupHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, lookup.KindStates, "")
}

// GetCitiesByState handles GET /lookups/states/{state}/cities
func (h *LookupHandler) GetCitiesByState(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	h.serve(w, r, lookup.KindCitiesByState, state)
}

// GetFacingDirections handles GET /lookups/facing-directions
func (h *LookupHandler) GetFacingDirections(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, lookup.KindFacingDirections, "")
}

func (h *LookupHandler) serve(w http.ResponseWriter, r *http.Request, kind lookup.Kind, state string) {
	query := queries.GetLookupQuery{
		Kind:         kind,
		State:        state,
		ForceRefresh: parseBoolParam(r, "refresh"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondError(w, r, kind, err)
		return
	}

	common.RespondWithMeta(w, http.StatusOK, result, &common.MetaInfo{
		RequestID: common.ExtractRequestID(r),
		Timestamp: utils.NowRFC3339(),
	})
}

func (h *LookupHandler) respondError(w http.ResponseWriter, r *http.Request, kind lookup.Kind, err error) {
	h.logger.Warn("Lookup request failed",
		zap.String("kind", string(kind)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		common.RespondError(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message)
		return
	}

	if errors.Is(err, querybus.ErrValidationFailed) {
		common.RespondError(w, http.StatusBadRequest,
			common.StandardErrorCodes.BadRequest, err.Error())
		return
	}

	common.RespondError(w, http.StatusInternalServerError,
		common.StandardErrorCodes.InternalError, "Internal server error")
}

func parseBoolParam(r *http.Request, name string) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}
