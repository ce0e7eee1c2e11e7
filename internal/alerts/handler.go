package alerts

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scamshield-ai/scamshield/pkg/common"
	"github.com/scamshield-ai/scamshield/pkg/pagination"
)

// Lister is the read surface the handler needs
type Lister interface {
	ListActive(ctx context.Context, audience string, limit, offset int) ([]*Alert, error)
	CountActive(ctx context.Context, audience string) (int64, error)
}

var _ Lister = (*Repository)(nil)

// Handler serves alert HTTP endpoints
type Handler struct {
	lister Lister
}

// NewHandler creates an alert handler
func NewHandler(lister Lister) *Handler {
	return &Handler{lister: lister}
}

// RegisterRoutes wires alert endpoints onto the router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/alerts", h.ListAlerts)
}

// ListAlerts returns active alerts, optionally filtered by audience
func (h *Handler) ListAlerts(c *gin.Context) {
	audience := c.Query("audience")
	switch audience {
	case "", AudienceAdmins, AudienceAllUsers, AudienceCommunity:
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "invalid audience filter")
		return
	}

	params := pagination.ParseParams(c)

	items, err := h.lister.ListActive(c.Request.Context(), audience, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	total, err := h.lister.CountActive(c.Request.Context(), audience)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to count alerts")
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}
