package users

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/anomaly"
	"github.com/scamshield-ai/scamshield/internal/behavior"
	"github.com/scamshield-ai/scamshield/pkg/common"
)

// Profiler computes a user's behavioral risk profile
type Profiler interface {
	Profile(ctx context.Context, userID uuid.UUID) (*behavior.Profile, error)
}

// AnomalyDetector runs the anomaly checks for a user
type AnomalyDetector interface {
	Detect(ctx context.Context, userID uuid.UUID) (*anomaly.Result, error)
}

var (
	_ Profiler        = (*behavior.Aggregator)(nil)
	_ AnomalyDetector = (*anomaly.Detector)(nil)
)

// Handler serves user risk endpoints
type Handler struct {
	repo     *Repository
	profiler Profiler
	detector AnomalyDetector
}

// NewHandler creates a user handler
func NewHandler(repo *Repository, profiler Profiler, detector AnomalyDetector) *Handler {
	return &Handler{repo: repo, profiler: profiler, detector: detector}
}

// RegisterRoutes wires user endpoints onto the router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users/:id/risk", h.GetRiskProfile)
}

// GetRiskProfile returns the behavioral profile and anomaly verdict for a
// user, computed on demand.
func (h *Handler) GetRiskProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx := c.Request.Context()

	exists, err := h.repo.Exists(ctx, userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if !exists {
		common.ErrorResponse(c, http.StatusNotFound, "user not found")
		return
	}

	profile, err := h.profiler.Profile(ctx, userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to compute behavioral profile")
		return
	}

	detection, err := h.detector.Detect(ctx, userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to run anomaly checks")
		return
	}

	common.SuccessResponse(c, gin.H{
		"user_id":  userID,
		"behavior": profile,
		"anomaly":  detection,
	})
}
