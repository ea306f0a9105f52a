package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/service"
)

type BatchesHandler struct{ svc service.BatchService }

func NewBatchesHandler(svc service.BatchService) *BatchesHandler {
	return &BatchesHandler{svc: svc}
}

// Receive godoc
// @Summary      Register a received stock batch
// @Description  Creates a FIFO lot for a product. Lots are consumed oldest-first at checkout.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateBatchRequest true "Batch details"
// @Success      201 {object} dto.BatchResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/batches [post]
func (h *BatchesHandler) Receive(c *gin.Context) {
	var req dto.CreateBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Receive(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListByProduct godoc
// @Summary      List a product's stock batches
// @Tags         batches
// @Produce      json
// @Param        id            path  string true  "Product UUID"
// @Param        include_empty query bool   false "Include exhausted lots"
// @Success      200 {object} dto.BatchListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/products/{id}/batches [get]
func (h *BatchesHandler) ListByProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	includeEmpty := c.Query("include_empty") == "true"
	resp, err := h.svc.ListByProduct(c.Request.Context(), id, includeEmpty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
