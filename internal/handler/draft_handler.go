package handler

import (
	"net/http"
	"strconv"

	"sales-dashboard/internal/model"
	"sales-dashboard/pkg/backend"
	"sales-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ClientRequest selects the draft client; zero or absent clears it
type ClientRequest struct {
	ClientID int `json:"id_cliente"`
}

// MethodRequest selects the draft payment method; empty clears it
type MethodRequest struct {
	Method string `json:"metodo_pago"`
}

// QuantityRequest sets the pending quantity of one product
type QuantityRequest struct {
	Quantity int `json:"cantidad"`
}

// SaveResponse is returned after a successful save or delete
type SaveResponse struct {
	Result    interface{} `json:"resultado"`
	Simulated bool        `json:"simulada"`
	Draft     interface{} `json:"borrador"`
}

func pathID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// GetDraft returns the current draft with its totals
func (h *Handler) GetDraft(c echo.Context) error {
	return c.JSON(http.StatusOK, h.form.Snapshot())
}

// ClearDraft empties the draft
func (h *Handler) ClearDraft(c echo.Context) error {
	h.form.Clear()
	return c.JSON(http.StatusOK, h.form.Snapshot())
}

// SelectSale loads an existing sale into the draft
func (h *Handler) SelectSale(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		log.Warn("Invalid sale id", zap.String("sale_id", c.Param("id")))
		return errorResponse(c, http.StatusBadRequest, "Error", "invalid sale id")
	}

	if err := h.form.Select(id); err != nil {
		log.Warn("Failed to select sale", zap.Int("sale_id", id), zap.Error(err))
		return formError(c, err)
	}
	return c.JSON(http.StatusOK, h.form.Snapshot())
}

// SetClient sets the draft client
func (h *Handler) SetClient(c echo.Context) error {
	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		logger.FromContext(c).Warn("Invalid client request", zap.Error(err))
		return errorResponse(c, http.StatusBadRequest, "Error", "invalid request body")
	}
	h.form.SetClient(req.ClientID)
	return c.JSON(http.StatusOK, h.form.Snapshot())
}

// SetMethod sets the draft payment method
func (h *Handler) SetMethod(c echo.Context) error {
	log := logger.FromContext(c)
	var req MethodRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid method request", zap.Error(err))
		return errorResponse(c, http.StatusBadRequest, "Error", "invalid request body")
	}

	var method model.PaymentMethod
	if req.Method != "" {
		m, err := model.ParsePaymentMethod(req.Method)
		if err != nil {
			log.Warn("Unknown payment method", zap.String("method", req.Method))
			return errorResponse(c, http.StatusBadRequest, "Error", err.Error())
		}
		method = m
	}

	if err := h.form.SetMethod(method); err != nil {
		return formError(c, err)
	}
	return c.JSON(http.StatusOK, h.form.Snapshot())
}

// SetQuantity sets the pending quantity of a product; zero or below removes it
func (h *Handler) SetQuantity(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		log.Warn("Invalid product id", zap.String("product_id", c.Param("id")))
		return errorResponse(c, http.StatusBadRequest, "Error", "invalid product id")
	}

	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid quantity request", zap.Error(err))
		return errorResponse(c, http.StatusBadRequest, "Error", "invalid request body")
	}

	h.form.SetQuantity(id, req.Quantity)
	return c.JSON(http.StatusOK, h.form.Snapshot())
}

// SaveDraft creates or updates the sale held by the draft
func (h *Handler) SaveDraft(c echo.Context) error {
	log := logger.FromContext(c)

	res, err := h.form.Save(logger.Ctx(c))
	if err != nil {
		log.Info("Sale not saved", zap.Error(err))
		return formError(c, err)
	}

	return c.JSON(http.StatusOK, SaveResponse{
		Result:    res,
		Simulated: res.Outcome == backend.Simulated,
		Draft:     h.form.Snapshot(),
	})
}

// RequestDelete opens the delete confirmation for the selected sale
func (h *Handler) RequestDelete(c echo.Context) error {
	confirmation, err := h.form.RequestDelete()
	if err != nil {
		return formError(c, err)
	}
	return c.JSON(http.StatusOK, confirmation)
}

// ConfirmDelete deletes the selected sale
func (h *Handler) ConfirmDelete(c echo.Context) error {
	log := logger.FromContext(c)

	res, err := h.form.ConfirmDelete(logger.Ctx(c))
	if err != nil {
		log.Info("Sale not deleted", zap.Error(err))
		return formError(c, err)
	}

	return c.JSON(http.StatusOK, SaveResponse{
		Result:    res,
		Simulated: res.Outcome == backend.Simulated,
		Draft:     h.form.Snapshot(),
	})
}

// CancelDelete dismisses the delete confirmation
func (h *Handler) CancelDelete(c echo.Context) error {
	h.form.CancelDelete()
	return c.JSON(http.StatusOK, h.form.Snapshot())
}
