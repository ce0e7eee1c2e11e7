package graph

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scamshield-ai/scamshield/pkg/common"
)

// Handler serves the graph endpoint
type Handler struct {
	builder *Builder
}

// NewHandler creates a graph handler
func NewHandler(builder *Builder) *Handler {
	return &Handler{builder: builder}
}

// RegisterRoutes wires the graph endpoint onto the router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/graph", h.GetGraph)
}

// GetGraph returns the derived fraud network
func (h *Handler) GetGraph(c *gin.Context) {
	result, err := h.builder.Build(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to build graph")
		return
	}

	common.SuccessResponse(c, result)
}
