package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/apierror"
	"retailpos/internal/service"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// DailySummary godoc
// @Summary      Daily sales summary
// @Description  Invoice count, gross and tax totals, and outstanding dues for one day.
// @Tags         reports
// @Produce      json
// @Param        date query string false "Date YYYY-MM-DD (default: today)"
// @Success      200 {object} dto.SalesSummary
// @Failure      400 {object} apierror.APIError
// @Router       /v1/reports/daily [get]
func (h *ReportsHandler) DailySummary(c *gin.Context) {
	resp, err := h.svc.DailySummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
