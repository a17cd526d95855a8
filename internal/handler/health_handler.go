package handler

import (
	"net/http"
	"time"

	"sales-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthCheck handles the health check endpoint. With ?check=backend it
// probes the backend first and records the result.
func (h *Handler) HealthCheck(c echo.Context) error {
	log := logger.FromContext(c)

	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	if c.QueryParam("check") == "backend" && h.prober != nil {
		available := h.prober.Probe(logger.Ctx(c))
		h.status.Set(available)
		if !available {
			log.Warn("Backend probe failed during health check")
		}
	}

	state := h.status.Get()
	response["backend_status"] = state.String()
	response["using_mock_data"] = h.status.UsingMockData()

	log.Debug("Health check requested", zap.String("backend_status", state.String()))
	return c.JSON(http.StatusOK, response)
}
