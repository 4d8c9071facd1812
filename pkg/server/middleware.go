package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"atlas/pkg/log"

	"github.com/labstack/echo/v4"
)

const (
	apiKeyHeader   = "X-Api-Key"
	adminKeyHeader = "X-Admin-Key"
)

// adminAuth guards tenant administration with the configured admin key.
func (api *APIServer) adminAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if api.config.AdminKey == "" {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "admin API is not configured",
			})
		}
		provided := ctx.Request().Header.Get(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(api.config.AdminKey)) != 1 {
			log.Warn().Str("path", ctx.Request().URL.Path).Msg("Admin key rejected")
			return ctx.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid admin key",
			})
		}
		return next(ctx)
	}
}

// apiKeyAuth resolves the tenant behind X-Api-Key and requires it to match
// the tenant addressed by the path. An unknown key is 401; a valid key for
// a different tenant is 403.
func (api *APIServer) apiKeyAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		apiKey := ctx.Request().Header.Get(apiKeyHeader)
		if apiKey == "" {
			return ctx.JSON(http.StatusUnauthorized, map[string]string{
				"error": "missing API key",
			})
		}
		tenantID, ok := api.registry.Resolve(apiKey)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid API key",
			})
		}
		if pathTenant := ctx.Param("tenant_id"); tenantID != pathTenant {
			log.Warn().
				Str("tenant_id", tenantID).
				Str("path_tenant", pathTenant).
				Msg("API key does not match addressed tenant")
			return ctx.JSON(http.StatusForbidden, map[string]string{
				"error": "API key does not grant access to this tenant",
			})
		}
		return next(ctx)
	}
}

// rateLimit enforces the token bucket, keyed by the presented API key.
func (api *APIServer) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if api.limiter == nil {
			return next(ctx)
		}
		if !api.limiter.Allow(ctx.Request().Header.Get(apiKeyHeader)) {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		}
		return next(ctx)
	}
}

// requestMetrics records latency and outcome per route and tenant.
func (api *APIServer) requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if api.metrics == nil {
			return next(ctx)
		}
		start := time.Now()
		err := next(ctx)

		route := ctx.Path()
		tenantID := ctx.Param("tenant_id")
		status := ctx.Response().Status
		if err != nil {
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			} else {
				status = http.StatusInternalServerError
			}
		}

		api.metrics.RequestLatencyMS.WithLabelValues(route, tenantID).
			Observe(float64(time.Since(start).Milliseconds()))
		api.metrics.RequestsTotal.WithLabelValues(route, tenantID, strconv.Itoa(status)).Inc()
		return err
	}
}
