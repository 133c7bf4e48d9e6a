package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/export"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/sales"
)

type SalesHandler struct {
	summary *sales.GetSummary
	log     *zap.Logger
}

func NewSalesHandler(summary *sales.GetSummary, log *zap.Logger) *SalesHandler {
	return &SalesHandler{summary: summary, log: log}
}

func (h *SalesHandler) load(c *gin.Context) (*sales.Summary, bool) {
	p := middleware.PrincipalFrom(c)

	shopID, ok := optionalUint(c, "shop_id")
	if !ok {
		return nil, false
	}

	sum, err := h.summary.Execute(c.Request.Context(), sales.SummaryInput{
		OwnerID: p.OwnerID,
		ShopID:  shopID,
		From:    c.Query("from"),
		To:      c.Query("to"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	return sum, true
}

func (h *SalesHandler) Summary(c *gin.Context) {
	sum, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, sum)
}

// Export sends the summary as an XLSX workbook.
func (h *SalesHandler) Export(c *gin.Context) {
	sum, ok := h.load(c)
	if !ok {
		return
	}

	name := fmt.Sprintf("sales_%s_%s.xlsx", sum.From, sum.To)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Status(http.StatusOK)

	if err := export.WriteSales(c.Writer, sum); err != nil {
		h.log.Error("sales export failed", zap.Error(err))
	}
}
