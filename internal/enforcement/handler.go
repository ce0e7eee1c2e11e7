package enforcement

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/users"
	"github.com/scamshield-ai/scamshield/pkg/common"
	"github.com/scamshield-ai/scamshield/pkg/middleware"
)

// Handler serves enforcement HTTP endpoints
type Handler struct {
	service *Service
}

// NewHandler creates an enforcement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires enforcement endpoints onto the router groups
func (h *Handler) RegisterRoutes(router, admin *gin.RouterGroup) {
	router.GET("/users/:id/enforcement", h.GetEnforcementState)
	admin.POST("/users/:id/enforcement/reset", h.ResetEnforcement)
}

// GetEnforcementState returns the frozen/throttled posture for a user
func (h *Handler) GetEnforcementState(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	state, err := h.service.GetState(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to fetch enforcement state")
		return
	}

	common.SuccessResponse(c, state)
}

// ResetEnforcement clears frozen/throttled state. Admin override, audited.
func (h *Handler) ResetEnforcement(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "acting user required")
		return
	}

	if err := h.service.Reset(c.Request.Context(), adminID, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to reset enforcement state")
		return
	}

	common.SuccessResponse(c, gin.H{"user_id": userID, "reset": true})
}
