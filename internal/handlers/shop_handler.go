package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/storage"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	errSlugTaken      = httperr.New(httperr.KindConflict, "slug_already_exists", "Slug already in use.")
	errInvalidSlug    = httperr.New(httperr.KindValidation, "invalid_slug", "Slugs use lowercase letters, digits and dashes.")
	errInvalidTZ      = httperr.New(httperr.KindValidation, "invalid_timezone", "Unknown timezone.")
	errInvalidSetting = httperr.New(httperr.KindValidation, "invalid_shop_settings", "")
	errBreakNotFound  = httperr.New(httperr.KindNotFound, "break_not_found", "Break not found.")
)

type ShopHandler struct {
	db      *gorm.DB
	cache   cache.AvailabilityCache
	storage storage.Storage
	audit   Auditor
}

func NewShopHandler(db *gorm.DB, c cache.AvailabilityCache, s storage.Storage, auditor Auditor) *ShopHandler {
	return &ShopHandler{db: db, cache: c, storage: s, audit: auditor}
}

// --------- Requests ---------

type ShopRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Timezone *string `json:"timezone"`

	MinAdvanceMinutes *int `json:"min_advance_minutes"`
	MaxAdvanceDays    *int `json:"max_advance_days"`
	SlotStepMinutes   *int `json:"slot_step_minutes"`
}

type ScheduleDay struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Closed    bool   `json:"closed"`
}

type SchedulesRequest struct {
	Days []ScheduleDay `json:"days" binding:"required"`
}

type BreakRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// apply copies the set fields of req onto shop and validates the result.
func (req ShopRequest) apply(shop *models.Shop) error {
	if req.Name != nil {
		shop.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		shop.Slug = strings.ToLower(strings.TrimSpace(*req.Slug))
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Email != nil {
		shop.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.Timezone != nil {
		shop.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.MaxAdvanceDays != nil {
		shop.MaxAdvanceDays = *req.MaxAdvanceDays
	}
	if req.SlotStepMinutes != nil {
		shop.SlotStepMinutes = *req.SlotStepMinutes
	}

	switch {
	case shop.Name == "":
		return errInvalidSetting.WithMessage("name is required")
	case !slugPattern.MatchString(shop.Slug):
		return errInvalidSlug
	case !timezone.IsValid(shop.Timezone):
		return errInvalidTZ
	case shop.MinAdvanceMinutes < 0:
		return errInvalidSetting.WithMessage("min_advance_minutes must be zero or positive")
	case shop.MaxAdvanceDays < 1:
		return errInvalidSetting.WithMessage("max_advance_days must be at least 1")
	case shop.SlotStepMinutes < 5 || shop.SlotStepMinutes > 120:
		return errInvalidSetting.WithMessage("slot_step_minutes must be between 5 and 120")
	}
	return nil
}

// ======================================================
// SHOPS
// ======================================================

func (h *ShopHandler) List(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	var shops []models.Shop
	if err := h.db.
		Where("owner_id = ?", p.OwnerID).
		Order("id ASC").
		Find(&shops).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, shops)
}

func (h *ShopHandler) Create(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	shop := models.Shop{
		OwnerID:           p.OwnerID,
		Timezone:          timezone.DefaultTimezone,
		MinAdvanceMinutes: 120,
		MaxAdvanceDays:    60,
		SlotStepMinutes:   15,
	}
	if err := req.apply(&shop); err != nil {
		httperr.FromError(c, err)
		return
	}
	if err := h.slugFree(shop.Slug, 0); err != nil {
		httperr.FromError(c, err)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		// A zero column default is skipped on insert.
		if shop.MinAdvanceMinutes == 0 {
			return tx.Model(&shop).Update("min_advance_minutes", 0).Error
		}
		return nil
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	recordAudit(h.audit, p, "shop_created", "shop", shop.ID, gin.H{"slug": shop.Slug})
	httpresp.Created(c, shop)
}

func (h *ShopHandler) Get(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := h.db.
		Where("shop_id = ?", shop.ID).
		Order("weekday ASC").
		Find(&shop.Schedules).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, shop)
}

func (h *ShopHandler) Update(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := req.apply(shop); err != nil {
		httperr.FromError(c, err)
		return
	}
	if err := h.slugFree(shop.Slug, shop.ID); err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := h.db.Omit("Schedules").Save(shop).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	// Timezone and booking windows change how every day resolves.
	h.cache.InvalidateShop(c.Request.Context(), shop.ID)
	recordAudit(h.audit, p, "shop_updated", "shop", shop.ID, req)
	httpresp.OK(c, shop)
}

func (h *ShopHandler) slugFree(slug string, exceptID uint) error {
	var count int64
	if err := h.db.Model(&models.Shop{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errSlugTaken
	}
	return nil
}

func (h *ShopHandler) UploadLogo(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	url, err := uploadImage(c, h.storage, fmt.Sprintf("shops/%d/logo", shop.ID))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := h.db.Model(shop).Update("logo_url", url).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	recordAudit(h.audit, p, "shop_logo_updated", "shop", shop.ID, nil)
	httpresp.OK(c, gin.H{"logo_url": url})
}

// ======================================================
// WEEKLY SCHEDULE
// ======================================================

// ReplaceSchedules swaps the whole weekly schedule. Weekdays left out are
// closed.
func (h *ShopHandler) ReplaceSchedules(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var req SchedulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rows := make([]models.ShopSchedule, 0, len(req.Days))
	for _, d := range req.Days {
		rows = append(rows, models.ShopSchedule{
			ShopID:    shop.ID,
			Weekday:   d.Weekday,
			OpenTime:  d.OpenTime,
			CloseTime: d.CloseTime,
			Closed:    d.Closed,
		})
	}
	if err := schedule.ValidateWeek(rows); err != nil {
		httperr.FromError(c, err)
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", shop.ID).Delete(&models.ShopSchedule{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	h.cache.InvalidateShop(c.Request.Context(), shop.ID)
	recordAudit(h.audit, p, "schedule_replaced", "shop", shop.ID, req.Days)
	httpresp.List(c, rows)
}

// ======================================================
// BREAKS
// ======================================================

func (h *ShopHandler) ListBreaks(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	q := h.db.Where("shop_id = ?", shop.ID)
	if from := c.Query("from"); from != "" {
		q = q.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("date <= ?", to)
	}

	var breaks []models.ShopBreak
	if err := q.Order("date ASC, start_time ASC").Find(&breaks).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, breaks)
}

func (h *ShopHandler) CreateBreak(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var req BreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	br := models.ShopBreak{
		ShopID:    shop.ID,
		Date:      strings.TrimSpace(req.Date),
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
		Reason:    req.Reason,
	}
	if err := schedule.ValidateBreak(br); err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := h.db.Create(&br).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	h.invalidateDay(c, shop.ID, br.Date)
	recordAudit(h.audit, p, "break_created", "shop_break", br.ID, br)
	httpresp.Created(c, br)
}

func (h *ShopHandler) DeleteBreak(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	breakID, ok := idParam(c, "break_id")
	if !ok {
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var br models.ShopBreak
	if err := h.db.
		Where("id = ? AND shop_id = ?", breakID, shop.ID).
		First(&br).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.FromError(c, errBreakNotFound)
			return
		}
		httperr.FromError(c, err)
		return
	}

	if err := h.db.Delete(&br).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	h.invalidateDay(c, shop.ID, br.Date)
	recordAudit(h.audit, p, "break_deleted", "shop_break", br.ID, br)
	httpresp.NoContent(c)
}

// invalidateDay drops cached slots of every worker of the shop on date.
func (h *ShopHandler) invalidateDay(c *gin.Context, shopID uint, date string) {
	var workerIDs []uint
	if err := h.db.Model(&models.Worker{}).
		Where("shop_id = ?", shopID).
		Pluck("id", &workerIDs).Error; err != nil {
		return
	}
	for _, w := range workerIDs {
		h.cache.Invalidate(c.Request.Context(), w, date)
	}
}
