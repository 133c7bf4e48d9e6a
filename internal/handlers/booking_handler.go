package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db           *gorm.DB
	repo         domain.Repository
	availability *booking.GetAvailability
	create       *booking.CreateBooking
	status       *booking.UpdateStatus
	payment      *booking.UpdatePayment
	byDate       *booking.ListBookingsByDate
	byMonth      *booking.ListBookingsByMonth
}

func NewBookingHandler(
	db *gorm.DB,
	repo domain.Repository,
	availability *booking.GetAvailability,
	create *booking.CreateBooking,
	status *booking.UpdateStatus,
	payment *booking.UpdatePayment,
) *BookingHandler {
	return &BookingHandler{
		db:           db,
		repo:         repo,
		availability: availability,
		create:       create,
		status:       status,
		payment:      payment,
		byDate:       booking.NewListBookingsByDate(repo),
		byMonth:      booking.NewListBookingsByMonth(repo),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ShopID        uint   `json:"shop_id" binding:"required"`
	WorkerID      uint   `json:"worker_id" binding:"required"`
	ServiceID     uint   `json:"service_id" binding:"required"`
	ClientName    string `json:"client_name" binding:"required"`
	ClientPhone   string `json:"client_phone" binding:"required"`
	ClientEmail   string `json:"client_email"`
	Date          string `json:"date" binding:"required"` // YYYY-MM-DD
	Time          string `json:"time" binding:"required"` // HH:MM
	Notes         string `json:"notes"`
	PaymentOption string `json:"payment_option"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentRequest struct {
	Status string           `json:"status" binding:"required"`
	Amount *decimal.Decimal `json:"amount"`
	Option *string          `json:"option"`
}

func paymentOption(raw string) domain.PaymentOption {
	if raw == "" {
		return domain.PaymentCash
	}
	return domain.PaymentOption(strings.ToUpper(raw))
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *BookingHandler) Availability(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	shopID, ok := requiredUint(c, "shop_id")
	if !ok {
		return
	}
	workerID, ok := requiredUint(c, "worker_id")
	if !ok {
		return
	}
	serviceID, ok := requiredUint(c, "service_id")
	if !ok {
		return
	}

	if _, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, shopID); err != nil {
		httperr.FromError(c, err)
		return
	}

	out, err := h.availability.Execute(c.Request.Context(), booking.AvailabilityInput{
		ShopID:    shopID,
		WorkerID:  workerID,
		ServiceID: serviceID,
		Date:      c.Query("date"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, out)
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if _, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, req.ShopID); err != nil {
		httperr.FromError(c, err)
		return
	}

	b, err := h.create.Execute(c.Request.Context(), booking.CreateBookingInput{
		ShopID:        req.ShopID,
		WorkerID:      req.WorkerID,
		ServiceID:     req.ServiceID,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
		PaymentOption: paymentOption(req.PaymentOption),
		Channel:       booking.ChannelAdmin,
		UserID:        &p.UserID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, b)
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) listInput(c *gin.Context) (booking.ListInput, bool) {
	p := middleware.PrincipalFrom(c)

	shopID, ok := requiredUint(c, "shop_id")
	if !ok {
		return booking.ListInput{}, false
	}
	workerID, ok := optionalUint(c, "worker_id")
	if !ok {
		return booking.ListInput{}, false
	}

	in := booking.ListInput{OwnerID: p.OwnerID, ShopID: shopID, WorkerID: workerID}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := domain.Status(strings.ToUpper(raw))
		if !s.Valid() {
			httperr.BadRequest(c, "invalid_status", "Unknown status.")
			return booking.ListInput{}, false
		}
		in.Status = &s
	}
	return in, true
}

func (h *BookingHandler) ListByDate(c *gin.Context) {
	in, ok := h.listInput(c)
	if !ok {
		return
	}

	out, err := h.byDate.Execute(c.Request.Context(), in, c.Query("date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	in, ok := h.listInput(c)
	if !ok {
		return
	}

	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		httperr.FromError(c, domain.ErrInvalidDate)
		return
	}

	out, err := h.byMonth.Execute(c.Request.Context(), in, year, month)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *BookingHandler) Get(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	b, err := h.repo.GetBooking(c.Request.Context(), p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	loc := timezone.Location(b.Shop.Timezone)
	httpresp.OK(c, gin.H{
		"booking": b,
		"local":   dto.PublicBooking(b, loc),
	})
}

// ======================================================
// STATUS / PAYMENT
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.moveTo(c, domain.Status(strings.ToUpper(req.Status)))
}

// Complete and Cancel are shortcuts for the matching status patch.
func (h *BookingHandler) Complete(c *gin.Context) { h.moveTo(c, domain.StatusCompleted) }

func (h *BookingHandler) Cancel(c *gin.Context) { h.moveTo(c, domain.StatusCancelled) }

func (h *BookingHandler) moveTo(c *gin.Context, status domain.Status) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	b, err := h.status.Execute(c.Request.Context(), booking.UpdateStatusInput{
		OwnerID:   p.OwnerID,
		UserID:    p.UserID,
		BookingID: id,
		Status:    status,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) UpdatePayment(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	in := booking.UpdatePaymentInput{
		OwnerID:   p.OwnerID,
		UserID:    p.UserID,
		BookingID: id,
		Status:    domain.PaymentStatus(strings.ToUpper(req.Status)),
		Amount:    req.Amount,
	}
	if req.Option != nil {
		opt := paymentOption(*req.Option)
		in.Option = &opt
	}

	b, err := h.payment.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, b)
}
