package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/arrival"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/arrival"
)

type ArrivalHandler struct {
	record *arrival.RecordArrival
	list   *arrival.ListArrivals
}

func NewArrivalHandler(record *arrival.RecordArrival, list *arrival.ListArrivals) *ArrivalHandler {
	return &ArrivalHandler{record: record, list: list}
}

// Record stamps the worker's arrival now.
func (h *ArrivalHandler) Record(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	a, err := h.record.Execute(c.Request.Context(), arrival.RecordInput{
		OwnerID:  p.OwnerID,
		UserID:   p.UserID,
		WorkerID: id,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, a)
}

func (h *ArrivalHandler) List(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	workerID, ok := optionalUint(c, "worker_id")
	if !ok {
		return
	}
	shopID, ok := optionalUint(c, "shop_id")
	if !ok {
		return
	}

	out, err := h.list.Execute(c.Request.Context(), domain.ListFilter{
		OwnerID:  p.OwnerID,
		WorkerID: workerID,
		ShopID:   shopID,
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}
