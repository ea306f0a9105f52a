package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/apierror"
	"retailpos/internal/cart"
	"retailpos/internal/dto"
	"retailpos/internal/service"
)

type CartHandler struct {
	sessions service.SessionService
	svc      service.CartService
}

func NewCartHandler(sessions service.SessionService, svc service.CartService) *CartHandler {
	return &CartHandler{sessions: sessions, svc: svc}
}

// writeCartError maps cart/session failures to HTTP responses. Stock limits
// get their own envelope so the POS screen can show the available figure.
func writeCartError(c *gin.Context, err error) {
	var stockErr *cart.StockLimitError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.NewStock(stockErr.Error(), stockErr.Available.String()))
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrHeldCartNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}

// OpenSession godoc
// @Summary      Open a cart session
// @Description  Creates an empty cart bound to this terminal. All cart routes require the session ID.
// @Tags         cart
// @Produce      json
// @Success      201 {object} dto.OpenSessionResponse
// @Router       /v1/sessions [post]
func (h *CartHandler) OpenSession(c *gin.Context) {
	id := h.sessions.Open()
	c.JSON(http.StatusCreated, dto.OpenSessionResponse{SessionID: id.String()})
}

// CloseSession godoc
// @Summary      Close a cart session
// @Tags         cart
// @Param        sid path string true "Session UUID"
// @Success      204
// @Router       /v1/sessions/{sid} [delete]
func (h *CartHandler) CloseSession(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	h.sessions.Close(sid)
	c.Status(http.StatusNoContent)
}

// Get godoc
// @Summary      Get the cart
// @Tags         cart
// @Produce      json
// @Param        sid path string true "Session UUID"
// @Success      200 {object} dto.CartResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sessions/{sid}/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), sid)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary      Add an item to the cart
// @Description  Catalog lines merge on same product+variant; manual lines never merge. The whole add is rejected when it would exceed available stock.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sid  path string true "Session UUID"
// @Param        body body dto.AddItemRequest true "Catalog reference or manual entry"
// @Success      200 {object} dto.CartResponse
// @Failure      409 {object} apierror.StockError
// @Router       /v1/sessions/{sid}/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), sid, req)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveItem godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        sid   path string true "Session UUID"
// @Param        index path int    true "Zero-based line index"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart/items/{index} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	idx, ok := pathIndex(c)
	if !ok {
		return
	}
	resp, err := h.svc.RemoveItem(c.Request.Context(), sid, idx)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateQuantity godoc
// @Summary      Update a line's quantity
// @Description  Optionally unit-aware: pass a unit to edit in a display unit (g, ml, cm) and have it reconciled back to the line's base unit. A quantity of zero or unusable text removes the line.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sid   path string true "Session UUID"
// @Param        index path int    true "Zero-based line index"
// @Param        body  body dto.UpdateQuantityRequest true "New quantity (raw text)"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart/items/{index}/quantity [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	idx, ok := pathIndex(c)
	if !ok {
		return
	}
	var req dto.UpdateQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateQuantity(c.Request.Context(), sid, idx, req)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePrice godoc
// @Summary      Override a line's unit price
// @Description  Unusable input reverts the line to its original product price, never to zero.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sid   path string true "Session UUID"
// @Param        index path int    true "Zero-based line index"
// @Param        body  body dto.UpdatePriceRequest true "New price (raw text)"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart/items/{index}/price [put]
func (h *CartHandler) UpdatePrice(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	idx, ok := pathIndex(c)
	if !ok {
		return
	}
	var req dto.UpdatePriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePrice(c.Request.Context(), sid, idx, req)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateBatch godoc
// @Summary      Pin a line to a stock batch
// @Description  Null batch_id restores automatic oldest-first selection.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sid   path string true "Session UUID"
// @Param        index path int    true "Zero-based line index"
// @Param        body  body dto.UpdateBatchRequest true "Batch selection"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart/items/{index}/batch [put]
func (h *CartHandler) UpdateBatch(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	idx, ok := pathIndex(c)
	if !ok {
		return
	}
	var req dto.UpdateBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateBatch(c.Request.Context(), sid, idx, req)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetDiscount godoc
// @Summary      Set the cart discount
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sid  path string true "Session UUID"
// @Param        body body dto.SetDiscountRequest true "percentage or fixed discount"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart/discount [put]
func (h *CartHandler) SetDiscount(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	var req dto.SetDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetDiscount(c.Request.Context(), sid, req)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetTaxRate godoc
// @Summary      Set the cart tax rate
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sid  path string true "Session UUID"
// @Param        body body dto.SetTaxRateRequest true "Tax percentage"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart/tax [put]
func (h *CartHandler) SetTaxRate(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	var req dto.SetTaxRateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetTaxRate(c.Request.Context(), sid, req)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetCustomer godoc
// @Summary      Attach or clear the cart's customer
// @Description  Null customer_id returns the sale to walk-in.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sid  path string true "Session UUID"
// @Param        body body dto.SetCustomerRequest true "Customer selection"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart/customer [put]
func (h *CartHandler) SetCustomer(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	var req dto.SetCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetCustomer(c.Request.Context(), sid, req)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clear godoc
// @Summary      Clear the cart
// @Description  Empties items, discount and customer; the configured tax rate persists.
// @Tags         cart
// @Produce      json
// @Param        sid path string true "Session UUID"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sessions/{sid}/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	resp, err := h.svc.Clear(c.Request.Context(), sid)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Hold godoc
// @Summary      Hold the cart
// @Description  Parks the cart in Redis and clears the terminal for the next sale.
// @Tags         cart
// @Produce      json
// @Param        sid path string true "Session UUID"
// @Success      201 {object} dto.HoldCartResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sessions/{sid}/cart/hold [post]
func (h *CartHandler) Hold(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	holdID, err := h.sessions.Hold(c.Request.Context(), sid)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.HoldCartResponse{HoldID: holdID})
}

// Resume godoc
// @Summary      Resume a held cart
// @Tags         cart
// @Produce      json
// @Param        sid  path string true "Session UUID"
// @Param        hold path string true "Hold ID"
// @Success      200 {object} dto.CartResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sessions/{sid}/cart/resume/{hold} [post]
func (h *CartHandler) Resume(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	snap, err := h.sessions.Resume(c.Request.Context(), sid, c.Param("hold"))
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartResponse{
		SessionID:     sid.String(),
		Items:         snap.Items,
		Customer:      snap.Customer,
		DiscountValue: snap.DiscountValue,
		DiscountType:  snap.DiscountType,
		TaxRate:       snap.TaxRate,
		Totals:        snap.Totals,
	})
}

// ListHeld godoc
// @Summary      List held carts
// @Tags         cart
// @Produce      json
// @Success      200 {array} dto.HeldCartSummary
// @Router       /v1/held-carts [get]
func (h *CartHandler) ListHeld(c *gin.Context) {
	held, err := h.sessions.ListHeld(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, held)
}
