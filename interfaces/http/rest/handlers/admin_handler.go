package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"refdata-backend/application/commands"
	"refdata-backend/application/commands/bus"
	"refdata-backend/pkg/auth"
	"refdata-backend/pkg/common"
	"refdata-backend/pkg/utils"
)

// AdminHandler handles the authenticated cache administration requests
type AdminHandler struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(commandBus *bus.CommandBus, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		commandBus: commandBus,
		logger:     logger,
	}
}

// WarmCacheRequest represents the request body for warming the cache
type WarmCacheRequest struct {
	States       []string `json:"states,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	ForceRefresh bool     `json:"force_refresh,omitempty"`
}

// ClearCache handles POST /admin/cache/clear
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized,
			common.StandardErrorCodes.Unauthorized, "Unauthorized")
		return
	}

	cmd := commands.ClearReferenceDataCommand{RequestedBy: userCtx.UserID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Cache clear failed",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondError(w, http.StatusInternalServerError,
			common.StandardErrorCodes.InternalError, "Failed to clear cache")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Reference-data cache cleared",
	})
}

// WarmCache handles POST /admin/cache/warm
func (h *AdminHandler) WarmCache(w http.ResponseWriter, r *http.Request) {
	var req WarmCacheRequest
	if r.ContentLength > 0 {
		if err := common.ParseJSONBody(r, &req, 64*1024); err != nil {
			common.RespondError(w, http.StatusBadRequest,
				common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest,
			common.StandardErrorCodes.ValidationError, "Validation error: "+err.Error())
		return
	}

	cmd := commands.WarmLookupsCommand{
		States:       req.States,
		ForceRefresh: req.ForceRefresh,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Cache warm-up failed", zap.Error(err))
		common.RespondError(w, http.StatusBadGateway,
			common.StandardErrorCodes.UpstreamError, "Failed to warm cache")
		return
	}

	common.RespondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Reference-data warm-up finished",
		"states":  req.States,
	})
}
