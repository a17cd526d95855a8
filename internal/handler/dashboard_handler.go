package handler

import (
	"net/http"

	"sales-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetDashboard returns the assembled view
func (h *Handler) GetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboard.Snapshot())
}

// ReloadDashboard probes the backend again and rebuilds the view
func (h *Handler) ReloadDashboard(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Reloading dashboard")

	if err := h.dashboard.Reload(logger.Ctx(c)); err != nil {
		log.Error("Failed to reload dashboard", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Error", "No se pudieron cargar los datos")
	}
	return c.JSON(http.StatusOK, h.dashboard.Snapshot())
}
