package server

import (
	"errors"
	"net/http"

	"atlas/pkg/log"
	"atlas/pkg/tenant"

	"github.com/labstack/echo/v4"
)

type createTenantRequest struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// createTenant handles POST /tenants requests.
func (api *APIServer) createTenant(ctx echo.Context) error {
	var req createTenantRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	apiKey, err := api.registry.Create(req.TenantID, req.Name)
	if err != nil {
		if errors.Is(err, tenant.ErrInvalidTenantID) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid tenant id",
			})
		}
		if errors.Is(err, tenant.ErrAlreadyExists) {
			return ctx.JSON(http.StatusConflict, map[string]string{
				"error": "tenant already exists",
			})
		}
		log.Error().Err(err).Str("tenant_id", req.TenantID).Msg("Tenant creation failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create tenant",
		})
	}

	log.Info().Str("tenant_id", req.TenantID).Msg("Tenant created")
	// The key is shown once and never again; only its hash is stored.
	return ctx.JSON(http.StatusCreated, map[string]string{
		"tenant_id": req.TenantID,
		"api_key":   apiKey,
	})
}

// rotateTenantKey handles POST /tenants/{tenant_id}/rotate-key requests.
func (api *APIServer) rotateTenantKey(ctx echo.Context) error {
	tenantID := ctx.Param("tenant_id")

	apiKey, err := api.registry.Rotate(tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{
				"error": "tenant not found",
			})
		}
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Key rotation failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to rotate key",
		})
	}

	log.Info().Str("tenant_id", tenantID).Msg("Tenant API key rotated")
	return ctx.JSON(http.StatusOK, map[string]string{
		"tenant_id": tenantID,
		"api_key":   apiKey,
	})
}
