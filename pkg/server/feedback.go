package server

import (
	"errors"
	"net/http"
	"strconv"

	"atlas/pkg/feedback"
	"atlas/pkg/log"

	"github.com/labstack/echo/v4"
)

type feedbackRequest struct {
	Label   string `json:"label"`
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Comment string `json:"comment"`
}

// submitFeedback handles POST /tenants/{tenant_id}/feedback requests.
func (api *APIServer) submitFeedback(ctx echo.Context) error {
	tenantID := ctx.Param("tenant_id")

	var req feedbackRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	record, err := api.feedback.Submit(ctx.Request().Context(), tenantID, feedback.Submission{
		Label:   req.Label,
		Query:   req.Query,
		Answer:  req.Answer,
		Comment: req.Comment,
	})
	if err != nil {
		if errors.Is(err, feedback.ErrInvalidLabel) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "label must be up or down",
			})
		}
		if errors.Is(err, feedback.ErrEmptyQuery) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "query must not be empty",
			})
		}
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Feedback submission failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to store feedback",
		})
	}

	if api.metrics != nil {
		api.metrics.FeedbackTotal.WithLabelValues(tenantID, record.Label).Inc()
	}
	return ctx.JSON(http.StatusCreated, record)
}

// listFeedback handles GET /tenants/{tenant_id}/feedback requests.
func (api *APIServer) listFeedback(ctx echo.Context) error {
	tenantID := ctx.Param("tenant_id")

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be an integer between 1 and 500",
			})
		}
		limit = parsed
	}

	records, err := api.feedback.List(ctx.Request().Context(), tenantID, limit)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Feedback listing failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list feedback",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"items": records,
	})
}
