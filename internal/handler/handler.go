package handler

import (
	"context"
	"errors"
	"net/http"

	"sales-dashboard/internal/connectivity"
	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/saleform"

	"github.com/labstack/echo/v4"
)

// Dashboard is the assembled view the handlers expose
type Dashboard interface {
	Snapshot() dashboard.View
	Reload(ctx context.Context) error
}

// Prober checks backend reachability on demand
type Prober interface {
	Probe(ctx context.Context) bool
}

// Handler serves the dashboard and the sale form over HTTP
type Handler struct {
	dashboard Dashboard
	form      *saleform.Form
	status    *connectivity.Status
	prober    Prober
}

// NewHandler creates a Handler
func NewHandler(d Dashboard, form *saleform.Form, status *connectivity.Status, prober Prober) *Handler {
	return &Handler{dashboard: d, form: form, status: status, prober: prober}
}

// RegisterRoutes mounts every route except /metrics
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)

	api := e.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.POST("/dashboard/reload", h.ReloadDashboard)

	draft := api.Group("/draft")
	draft.GET("", h.GetDraft)
	draft.DELETE("", h.ClearDraft)
	draft.POST("/select/:id", h.SelectSale)
	draft.PUT("/client", h.SetClient)
	draft.PUT("/method", h.SetMethod)
	draft.PUT("/products/:id", h.SetQuantity)
	draft.POST("/save", h.SaveDraft)
	draft.POST("/delete", h.RequestDelete)
	draft.POST("/delete/confirm", h.ConfirmDelete)
	draft.POST("/delete/cancel", h.CancelDelete)
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error Dialog `json:"error"`
}

// Dialog is a title and description the presentation shows to the user
type Dialog struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func errorResponse(c echo.Context, status int, title, description string) error {
	return c.JSON(status, ErrorBody{Error: Dialog{Title: title, Description: description}})
}

// formError maps sale form failures to an HTTP status
func formError(c echo.Context, err error) error {
	var de *saleform.DialogError
	if errors.As(err, &de) {
		status := http.StatusInternalServerError
		if de.Validation {
			status = http.StatusUnprocessableEntity
		}
		return errorResponse(c, status, de.Title, de.Description)
	}

	switch {
	case errors.Is(err, saleform.ErrSaveInProgress):
		return errorResponse(c, http.StatusConflict, "Error", err.Error())
	case errors.Is(err, saleform.ErrUnknownSale):
		return errorResponse(c, http.StatusNotFound, "Error", err.Error())
	case errors.Is(err, saleform.ErrNoSaleSelected),
		errors.Is(err, saleform.ErrDeleteNotRequested),
		errors.Is(err, saleform.ErrInvalidMethod):
		return errorResponse(c, http.StatusBadRequest, "Error", err.Error())
	}
	return errorResponse(c, http.StatusInternalServerError, "Error", err.Error())
}
