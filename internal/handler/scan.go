package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"retailpos/internal/apierror"
	"retailpos/internal/service"
)

// scanAwaitTimeout bounds the long-poll; clients re-poll on 204.
const scanAwaitTimeout = 25 * time.Second

type ScanHandler struct{ svc service.ScanService }

func NewScanHandler(svc service.ScanService) *ScanHandler {
	return &ScanHandler{svc: svc}
}

type pushScanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

// Push godoc
// @Summary      Relay a scanned barcode to a terminal
// @Description  Called by the companion scanner (phone camera). The POS terminal receives it via the long-poll endpoint.
// @Tags         scan
// @Accept       json
// @Param        sid  path string true "Session UUID"
// @Param        body body pushScanRequest true "Scanned barcode"
// @Success      202
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sessions/{sid}/scan [post]
func (h *ScanHandler) Push(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	var req pushScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Push(c.Request.Context(), sid, req.Barcode); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusAccepted)
}

// Await godoc
// @Summary      Long-poll for the next scanned barcode
// @Description  Blocks up to 25s. Responds 204 when nothing was scanned; clients simply poll again.
// @Tags         scan
// @Produce      json
// @Param        sid path string true "Session UUID"
// @Success      200 {object} map[string]string
// @Success      204
// @Router       /v1/sessions/{sid}/scan [get]
func (h *ScanHandler) Await(c *gin.Context) {
	sid, ok := pathUUID(c, "sid")
	if !ok {
		return
	}
	barcode, err := h.svc.Await(c.Request.Context(), sid, scanAwaitTimeout)
	if err != nil {
		if errors.Is(err, service.ErrNoScan) {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"barcode": barcode})
}
