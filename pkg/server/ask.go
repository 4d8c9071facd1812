package server

import (
	"errors"
	"net/http"
	"strings"

	"atlas/pkg/answerer"
	"atlas/pkg/log"
	"atlas/pkg/vectorindex"

	"github.com/labstack/echo/v4"
)

const (
	defaultTopK = 8
	maxTopK     = 50
	maxQueryLen = 1000
)

type askRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// ask handles POST /tenants/{tenant_id}/ask requests.
func (api *APIServer) ask(ctx echo.Context) error {
	tenantID := ctx.Param("tenant_id")

	var req askRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	query := strings.TrimSpace(req.Query)
	if query == "" || len(query) > maxQueryLen {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "query must be between 1 and 1000 characters",
		})
	}
	k := req.TopK
	if k == 0 {
		k = defaultTopK
	}
	if k < 1 || k > maxTopK {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "top_k must be between 1 and 50",
		})
	}

	result, err := api.retrieval.Answer(ctx.Request().Context(), tenantID, query, k)
	if err != nil {
		if errors.Is(err, vectorindex.ErrUnavailable) || errors.Is(err, answerer.ErrUnavailable) {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "upstream service unavailable",
			})
		}
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Query failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to answer query",
		})
	}

	return ctx.JSON(http.StatusOK, result)
}
