package server

import (
	"errors"
	"net/http"
	"strconv"

	"atlas/pkg/log"
	"atlas/pkg/models"
	"atlas/pkg/rawstore"

	"github.com/labstack/echo/v4"
)

type listDocsResponse struct {
	Items      []models.RawListEntry `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// listDocs handles GET /tenants/{tenant_id}/docs requests.
func (api *APIServer) listDocs(ctx echo.Context) error {
	tenantID := ctx.Param("tenant_id")

	opts := rawstore.ListOptions{
		Cursor: ctx.QueryParam("cursor"),
		Source: ctx.QueryParam("source"),
	}
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be an integer between 1 and 500",
			})
		}
		opts.Limit = limit
	}

	items, next, err := api.raw.List(tenantID, opts)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Document listing failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list documents",
		})
	}

	return ctx.JSON(http.StatusOK, listDocsResponse{Items: items, NextCursor: next})
}

// getDoc handles GET /tenants/{tenant_id}/docs/{doc_id} requests.
func (api *APIServer) getDoc(ctx echo.Context) error {
	tenantID := ctx.Param("tenant_id")
	docID := ctx.Param("doc_id")

	variant := ctx.QueryParam("variant")
	if variant == "" {
		variant = rawstore.VariantRaw
	}

	doc, err := api.raw.Get(tenantID, docID, variant)
	if err != nil {
		ve := rawstore.InconsistencyError{}
		switch {
		case errors.Is(err, rawstore.ErrInvalidVariant):
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "variant must be raw or clean",
			})
		case errors.Is(err, rawstore.ErrNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]string{
				"error": "document not found",
			})
		case errors.As(err, &ve):
			// The index references a record the day files no longer hold.
			log.Error().Err(err).Str("tenant_id", tenantID).Str("doc_id", docID).Msg("Raw store inconsistency")
			return ctx.JSON(http.StatusInternalServerError, map[string]string{
				"error": "stored document is inconsistent",
			})
		default:
			log.Error().Err(err).Str("tenant_id", tenantID).Str("doc_id", docID).Msg("Document read failed")
			return ctx.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to read document",
			})
		}
	}

	return ctx.JSON(http.StatusOK, doc)
}
