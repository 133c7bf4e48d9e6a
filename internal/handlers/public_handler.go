package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db           *gorm.DB
	repo         domain.Repository
	availability *booking.GetAvailability
	create       *booking.CreateBooking
	byReference  *booking.GetByReference
	cancel       *booking.CancelByReference
	confirm      *booking.ConfirmPayment
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	availability *booking.GetAvailability,
	create *booking.CreateBooking,
	cancel *booking.CancelByReference,
	confirm *booking.ConfirmPayment,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		repo:         repo,
		availability: availability,
		create:       create,
		byReference:  booking.NewGetByReference(repo),
		cancel:       cancel,
		confirm:      confirm,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateBookingRequest struct {
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

type publicWorker struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url"`
	ServiceIDs []uint `json:"service_ids"`
}

type paymentNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

var errInvalidPriceFilter = httperr.New(httperr.KindValidation, "invalid_price_filter", "min_price and max_price must be numbers.")

func (h *PublicHandler) shop(c *gin.Context) (*models.Shop, bool) {
	shop, err := h.repo.GetShopBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	return shop, true
}

////////////////////////////////////////////////////////
// SHOP PROFILE
////////////////////////////////////////////////////////

// Shop returns the profile with its active services and workers. Services
// filter with category, min_price, max_price and query, and sort with
// price_asc, price_desc, duration_asc or duration_desc.
func (h *PublicHandler) Shop(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var workers []models.Worker
	if err := h.db.
		Preload("Services", "active = ?", true).
		Where("shop_id = ? AND status = ?", shop.ID, models.WorkerActive).
		Order("name ASC").
		Find(&workers).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	services, err := h.services(c, shop)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	staff := make([]publicWorker, 0, len(workers))
	for _, w := range workers {
		pw := publicWorker{ID: w.ID, Name: w.Name, AvatarURL: w.AvatarURL, ServiceIDs: []uint{}}
		for _, s := range w.Services {
			pw.ServiceIDs = append(pw.ServiceIDs, s.ID)
		}
		staff = append(staff, pw)
	}

	var week []models.ShopSchedule
	if err := h.db.Where("shop_id = ?", shop.ID).Order("weekday ASC").Find(&week).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"shop": gin.H{
			"name":      shop.Name,
			"slug":      shop.Slug,
			"phone":     shop.Phone,
			"email":     shop.Email,
			"address":   shop.Address,
			"timezone":  shop.Timezone,
			"logo_url":  shop.LogoURL,
			"schedules": week,
		},
		"services": services,
		"workers":  staff,
	})
}

func (h *PublicHandler) services(c *gin.Context, shop *models.Shop) ([]models.Service, error) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	minPriceStr := c.Query("min_price")
	maxPriceStr := c.Query("max_price")
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	sort := strings.ToLower(strings.TrimSpace(c.Query("sort")))

	q := h.db.Where("owner_id = ? AND active = ?", shop.OwnerID, true)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if minPriceStr != "" {
		minPrice, err := decimal.NewFromString(minPriceStr)
		if err != nil {
			return nil, errInvalidPriceFilter
		}
		q = q.Where("price >= ?", minPrice)
	}

	if maxPriceStr != "" {
		maxPrice, err := decimal.NewFromString(maxPriceStr)
		if err != nil {
			return nil, errInvalidPriceFilter
		}
		q = q.Where("price <= ?", maxPrice)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	orderClause := "id ASC"
	switch sort {
	case "price_asc":
		orderClause = "price ASC, id ASC"
	case "price_desc":
		orderClause = "price DESC, id ASC"
	case "duration_asc":
		orderClause = "duration_min ASC, id ASC"
	case "duration_desc":
		orderClause = "duration_min DESC, id ASC"
	}

	services := []models.Service{}
	err := q.Order(orderClause).Find(&services).Error
	return services, err
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	shop, ok := h.shop(c)
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

	out, err := h.availability.Execute(c.Request.Context(), booking.AvailabilityInput{
		ShopID:    shop.ID,
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

////////////////////////////////////////////////////////
// CREATE BOOKING
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.create.Execute(c.Request.Context(), booking.CreateBookingInput{
		ShopID:        shop.ID,
		WorkerID:      req.WorkerID,
		ServiceID:     req.ServiceID,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
		PaymentOption: paymentOption(req.PaymentOption),
		Channel:       booking.ChannelPublic,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, dto.PublicBooking(b, timezone.Location(shop.Timezone)))
}

////////////////////////////////////////////////////////
// SELF-SERVICE
////////////////////////////////////////////////////////

func (h *PublicHandler) GetBooking(c *gin.Context) {
	b, err := h.byReference.Execute(c.Request.Context(), c.Param("reference"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, dto.PublicBooking(b, timezone.Location(b.Shop.Timezone)))
}

func (h *PublicHandler) CancelBooking(c *gin.Context) {
	b, err := h.cancel.Execute(c.Request.Context(), c.Param("reference"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, dto.PublicBooking(b, timezone.Location(b.Shop.Timezone)))
}

////////////////////////////////////////////////////////
// PAYMENT WEBHOOK
////////////////////////////////////////////////////////

// PaymentWebhook accepts MercadoPago notifications. The payment id comes in
// the JSON body (data.id) or, for older notifications, in the query string.
// Anything that is not a payment is acknowledged and ignored.
func (h *PublicHandler) PaymentWebhook(c *gin.Context) {
	var body paymentNotification
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		bindError(c, err)
		return
	}

	kind := firstNonEmpty(body.Type, c.Query("type"), c.Query("topic"))
	id := firstNonEmpty(body.Data.ID, c.Query("data.id"), c.Query("id"))

	if kind != "payment" || id == "" {
		httpresp.OK(c, gin.H{"status": "ignored"})
		return
	}

	b, err := h.confirm.Execute(c.Request.Context(), id)
	if err != nil {
		var be httperr.BusinessError
		if errors.As(err, &be) && be.Kind == httperr.KindNotFound {
			httpresp.OK(c, gin.H{"status": "ignored"})
			return
		}
		httperr.FromError(c, err)
		return
	}
	if b == nil {
		httpresp.OK(c, gin.H{"status": "pending"})
		return
	}

	httpresp.OK(c, gin.H{"status": "paid", "reference": b.Reference})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
