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

type CheckoutHandler struct{ svc service.CheckoutService }

func NewCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Checkout godoc
// @Summary      Finalize the cart into an invoice
// @Description  Settles the split tender against the cart total (±0.01 tolerance; underpayment records a due amount, overpayment is rejected), writes the invoice atomically with stock and batch consumption, clears the cart, and queues the receipt PDF.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        sid  path string true "Session UUID"
// @Param        body body dto.CheckoutRequest true "Tendered amounts"
// @Success      201 {object} dto.CheckoutResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sessions/{sid}/checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), sid, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, cart.ErrOverpayment), errors.Is(err, service.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        date        query string false "Date YYYY-MM-DD"
// @Param        status      query string false "paid | partial"
// @Param        customer_id query string false "Customer UUID"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Page size (default 20)"
// @Success      200 {object} dto.InvoiceListResponse
// @Router       /v1/invoices [get]
func (h *CheckoutHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	resp, err := h.svc.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get invoice by ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice UUID"
// @Success      200 {object} dto.InvoiceResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/invoices/{id} [get]
func (h *CheckoutHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
