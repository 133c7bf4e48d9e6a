package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/storage"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

var (
	errInvalidWorkerStatus = httperr.New(httperr.KindValidation, "invalid_worker_status", "Status must be ACTIVE or INACTIVE.")
	errWorkerUnassigned    = httperr.New(httperr.KindValidation, "worker_unassigned", "Assign the worker to a shop first.")
)

type WorkerHandler struct {
	db      *gorm.DB
	cache   cache.AvailabilityCache
	storage storage.Storage
	audit   Auditor
}

func NewWorkerHandler(db *gorm.DB, c cache.AvailabilityCache, s storage.Storage, auditor Auditor) *WorkerHandler {
	return &WorkerHandler{db: db, cache: c, storage: s, audit: auditor}
}

// --------- Requests ---------

type CreateWorkerRequest struct {
	Name   string `json:"name" binding:"required"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	ShopID *uint  `json:"shop_id"`
}

type UpdateWorkerRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Status *string `json:"status"`
}

type AssignWorkerRequest struct {
	ShopID uint `json:"shop_id" binding:"required"`
}

type WorkerServicesRequest struct {
	ServiceIDs []uint `json:"service_ids"`
}

// ======================================================
// HELPERS
// ======================================================

func (h *WorkerHandler) owned(c *gin.Context, ownerID uint) (*models.Worker, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	var w models.Worker
	err := h.db.
		Preload("Services").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.FromError(c, domain.ErrWorkerNotFound)
		return nil, false
	}
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	return &w, true
}

// setShop keeps shop_id NULL exactly when the worker is UNASSIGNED.
func setShop(w *models.Worker, shopID *uint) {
	w.ShopID = shopID
	w.Shop = nil
	switch {
	case shopID == nil:
		w.Status = models.WorkerUnassigned
	case w.Status == models.WorkerUnassigned:
		w.Status = models.WorkerActive
	}
}

// moved drops cached availability of the shops a worker left or joined.
func (h *WorkerHandler) moved(c *gin.Context, shopIDs ...*uint) {
	for _, id := range shopIDs {
		if id != nil {
			h.cache.InvalidateShop(c.Request.Context(), *id)
		}
	}
}

func (h *WorkerHandler) save(c *gin.Context, w *models.Worker) bool {
	if err := h.db.Omit("Services", "Shop").Save(w).Error; err != nil {
		httperr.FromError(c, err)
		return false
	}
	return true
}

// ======================================================
// WORKERS
// ======================================================

func (h *WorkerHandler) List(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	shopID, ok := optionalUint(c, "shop_id")
	if !ok {
		return
	}

	q := h.db.Preload("Services").Where("owner_id = ?", p.OwnerID)
	if shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		q = q.Where("status = ?", status)
	}

	var workers []models.Worker
	if err := q.Order("name ASC").Find(&workers).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, workers)
}

func (h *WorkerHandler) Get(c *gin.Context) {
	w, ok := h.owned(c, middleware.PrincipalFrom(c).OwnerID)
	if !ok {
		return
	}
	httpresp.OK(c, w)
}

func (h *WorkerHandler) Create(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	var req CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if req.ShopID != nil {
		if _, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, *req.ShopID); err != nil {
			httperr.FromError(c, err)
			return
		}
	}

	w := models.Worker{
		OwnerID: p.OwnerID,
		Name:    strings.TrimSpace(req.Name),
		Phone:   req.Phone,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
	}
	setShop(&w, req.ShopID)

	if err := h.db.Create(&w).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	recordAudit(h.audit, p, "worker_created", "worker", w.ID, gin.H{"shop_id": w.ShopID})
	httpresp.Created(c, w)
}

func (h *WorkerHandler) Update(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	w, ok := h.owned(c, p.OwnerID)
	if !ok {
		return
	}

	var req UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if req.Name != nil {
		w.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		w.Phone = *req.Phone
	}
	if req.Email != nil {
		w.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Status != nil {
		status := strings.ToUpper(*req.Status)
		if status != models.WorkerActive && status != models.WorkerInactive {
			httperr.FromError(c, errInvalidWorkerStatus)
			return
		}
		if w.ShopID == nil {
			httperr.FromError(c, errWorkerUnassigned)
			return
		}
		w.Status = status
	}

	if !h.save(c, w) {
		return
	}

	recordAudit(h.audit, p, "worker_updated", "worker", w.ID, req)
	httpresp.OK(c, w)
}

// Assign moves the worker to a shop of the same owner and activates it.
func (h *WorkerHandler) Assign(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	w, ok := h.owned(c, p.OwnerID)
	if !ok {
		return
	}

	var req AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	shop, err := ownedShop(c.Request.Context(), h.db, p.OwnerID, req.ShopID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	prev := w.ShopID
	setShop(w, &shop.ID)
	if !h.save(c, w) {
		return
	}
	h.moved(c, prev, w.ShopID)

	recordAudit(h.audit, p, "worker_assigned", "worker", w.ID, gin.H{"shop_id": shop.ID})
	httpresp.OK(c, w)
}

// Unassign detaches the worker from its shop. Existing bookings stay.
func (h *WorkerHandler) Unassign(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	w, ok := h.owned(c, p.OwnerID)
	if !ok {
		return
	}

	prev := w.ShopID
	setShop(w, nil)
	if !h.save(c, w) {
		return
	}
	h.moved(c, prev)

	recordAudit(h.audit, p, "worker_unassigned", "worker", w.ID, nil)
	httpresp.OK(c, w)
}

// SetServices replaces the services the worker performs.
func (h *WorkerHandler) SetServices(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	w, ok := h.owned(c, p.OwnerID)
	if !ok {
		return
	}

	var req WorkerServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	services := []models.Service{}
	if len(req.ServiceIDs) > 0 {
		if err := h.db.
			Where("owner_id = ? AND id IN ?", p.OwnerID, req.ServiceIDs).
			Find(&services).Error; err != nil {
			httperr.FromError(c, err)
			return
		}
		if len(services) != len(uniq(req.ServiceIDs)) {
			httperr.FromError(c, domain.ErrServiceNotFound)
			return
		}
	}

	assoc := h.db.Model(w).Association("Services")
	var err error
	if len(services) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(services)
	}
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	w.Services = services

	recordAudit(h.audit, p, "worker_services_updated", "worker", w.ID, req)
	httpresp.OK(c, w)
}

func (h *WorkerHandler) UploadAvatar(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	w, ok := h.owned(c, p.OwnerID)
	if !ok {
		return
	}

	url, err := uploadImage(c, h.storage, fmt.Sprintf("workers/%d/avatar", w.ID))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := h.db.Model(w).Update("avatar_url", url).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	recordAudit(h.audit, p, "worker_avatar_updated", "worker", w.ID, nil)
	httpresp.OK(c, gin.H{"avatar_url": url})
}

func uniq(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
