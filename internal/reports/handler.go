package reports

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/pkg/common"
	"github.com/scamshield-ai/scamshield/pkg/logger"
	"github.com/scamshield-ai/scamshield/pkg/middleware"
	"github.com/scamshield-ai/scamshield/pkg/pagination"
	"github.com/scamshield-ai/scamshield/pkg/validation"
	"go.uber.org/zap"
)

// Handler serves report HTTP endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a report handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires report endpoints onto the router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/reports", h.SubmitReport)
	router.POST("/reports/ingest", h.IngestFeed)
	router.GET("/reports", h.ListReports)
	router.GET("/reports/:id", h.GetReport)
	router.PUT("/reports/:id/status", h.UpdateStatus)
	router.POST("/reports/:id/vote", h.Vote)
}

// SubmitReport accepts a user report and runs the threat pipeline on it
func (h *Handler) SubmitReport(c *gin.Context) {
	submitterID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "acting user required")
		return
	}

	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	result, err := h.service.SubmitReport(c.Request.Context(), submitterID, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	common.CreatedResponse(c, result)
}

// IngestFeed accepts an external feed batch and processes it in the
// background. Correlation over a large corpus is the long pole, so bulk
// ingestion never blocks the caller.
func (h *Handler) IngestFeed(c *gin.Context) {
	var req IngestFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	// Detach from the request context; the batch outlives the response.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		result := h.service.IngestFeed(ctx, &req)
		logger.WithContext(ctx).Info("feed batch processed",
			zap.String("source", result.Source),
			zap.Int("accepted", result.Accepted),
			zap.Int("failed", result.Failed),
		)
	}()

	c.JSON(http.StatusAccepted, common.Response{
		Success: true,
		Data:    gin.H{"source": req.Source, "queued": len(req.Items)},
	})
}

// ListReports returns a page of reports
func (h *Handler) ListReports(c *gin.Context) {
	params := pagination.ParseParams(c)

	items, total, err := h.service.ListReports(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetReport returns one report
func (h *Handler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, report)
}

// UpdateStatus applies a human review lifecycle transition
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid report id")
		return
	}

	actorID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "acting user required")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	report, err := h.service.UpdateStatus(c.Request.Context(), actorID, id, Status(req.Status))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, report)
}

// Vote records an upvote or downvote on a report
func (h *Handler) Vote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid report id")
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorResponse(c, err)
		return
	}

	if err := h.service.Vote(c.Request.Context(), id, req.VoteType); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"report_id": id, "vote_type": req.VoteType})
}

func bindErrorResponse(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  validation.NewValidationError(validationErrs).Errors,
		})
		return
	}
	common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
}

func serviceErrorResponse(c *gin.Context, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
}
