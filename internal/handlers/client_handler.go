package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

var errPhoneTaken = httperr.New(httperr.KindConflict, "client_phone_exists", "A client with this phone already exists.")

type ClientHandler struct {
	db    *gorm.DB
	audit Auditor
}

func NewClientHandler(db *gorm.DB, auditor Auditor) *ClientHandler {
	return &ClientHandler{db: db, audit: auditor}
}

type ClientRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

func (req ClientRequest) apply(cl *models.Client) error {
	if req.Name != nil {
		cl.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		cl.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		cl.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Notes != nil {
		cl.Notes = *req.Notes
	}
	if cl.Name == "" || cl.Phone == "" {
		return domain.ErrInvalidClient
	}
	return nil
}

// ======================================================
// LIST CLIENTS
// ======================================================

func (h *ClientHandler) List(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("owner_id = ?", p.OwnerID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"(LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, clients)
}

// ======================================================
// GET CLIENT + HISTORY
// ======================================================

func (h *ClientHandler) Get(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	cl, ok := h.owned(c, p.OwnerID)
	if !ok {
		return
	}

	var bookings []models.Booking
	if err := h.db.
		Preload("Shop").
		Preload("Worker").
		Preload("Service").
		Preload("Client").
		Where("client_id = ?", cl.ID).
		Order("start_time DESC").
		Find(&bookings).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	history := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		history = append(history, dto.BookingList([]models.Booking{b}, timezone.Location(b.Shop.Timezone))...)
	}

	httpresp.OK(c, gin.H{
		"client":   cl,
		"bookings": history,
	})
}

func (h *ClientHandler) Create(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cl := models.Client{OwnerID: p.OwnerID}
	if err := req.apply(&cl); err != nil {
		httperr.FromError(c, err)
		return
	}
	if err := h.phoneFree(p.OwnerID, cl.Phone, 0); err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := h.db.Create(&cl).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	recordAudit(h.audit, p, "client_created", "client", cl.ID, nil)
	httpresp.Created(c, cl)
}

func (h *ClientHandler) Update(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	cl, ok := h.owned(c, p.OwnerID)
	if !ok {
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := req.apply(cl); err != nil {
		httperr.FromError(c, err)
		return
	}
	if err := h.phoneFree(p.OwnerID, cl.Phone, cl.ID); err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := h.db.Save(cl).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	recordAudit(h.audit, p, "client_updated", "client", cl.ID, req)
	httpresp.OK(c, cl)
}

func (h *ClientHandler) owned(c *gin.Context, ownerID uint) (*models.Client, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	var cl models.Client
	err := h.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&cl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.FromError(c, domain.ErrClientNotFound)
		return nil, false
	}
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	return &cl, true
}

func (h *ClientHandler) phoneFree(ownerID uint, phone string, exceptID uint) error {
	var count int64
	if err := h.db.Model(&models.Client{}).
		Where("owner_id = ? AND phone = ? AND id <> ?", ownerID, phone, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errPhoneTaken
	}
	return nil
}
