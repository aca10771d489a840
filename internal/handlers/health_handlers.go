package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hardwarestore/internal/caching"
	"hardwarestore/pkg/database"
)

type HealthHandlers struct {
	store   database.Store
	cache   caching.CacheService
	version string
}

func NewHealthHandlers(store database.Store, cache caching.CacheService, version string) *HealthHandlers {
	return &HealthHandlers{store: store, cache: cache, version: version}
}

func (h *HealthHandlers) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// Ready reports the database and cache reachability; only the database is required.
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok", "cache": "ok"}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
		}
	}
	return c.JSON(status, map[string]any{
		"status":  http.StatusText(status),
		"backend": h.store.Backend(),
		"checks":  checks,
	})
}
