package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/imaging"
	"github.com/BruksfildServices01/salon-booking/internal/infra/storage"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const (
	maxUploadBytes = 5 << 20
	maxImageSide   = 512
)

// Auditor accepts audit events without blocking.
type Auditor interface {
	Dispatch(ev audit.Event)
}

func recordAudit(a Auditor, p middleware.Principal, action, entity string, entityID uint, meta any) {
	a.Dispatch(audit.Event{
		OwnerID:  p.OwnerID,
		UserID:   &p.UserID,
		Action:   action,
		Entity:   entity,
		EntityID: &entityID,
		Metadata: meta,
	})
}

// idParam reads a positive numeric path parameter. It writes the 400 itself.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}

// optionalUint reads an optional numeric query parameter.
func optionalUint(c *gin.Context, key string) (*uint, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_"+key, "Invalid "+key+".")
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func requiredUint(c *gin.Context, key string) (uint, bool) {
	v, ok := optionalUint(c, key)
	if !ok {
		return 0, false
	}
	if v == nil {
		httperr.BadRequest(c, "missing_"+key, key+" is required.")
		return 0, false
	}
	return *v, true
}

func bindError(c *gin.Context, err error) {
	httperr.BadRequest(c, "invalid_request", err.Error())
}

// ownedShop loads a shop of the principal's owner.
func ownedShop(ctx context.Context, db *gorm.DB, ownerID, shopID uint) (*models.Shop, error) {
	var shop models.Shop
	err := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", shopID, ownerID).
		First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

var errUploadMissing = httperr.New(httperr.KindValidation, "missing_file", "Form field \"file\" is required.")
var errUploadInvalid = httperr.New(httperr.KindValidation, "invalid_image", "Upload a JPEG, PNG or WebP image.")
var errUploadTooLarge = httperr.New(httperr.KindValidation, "file_too_large", "Images are limited to 5 MB.")

// uploadImage converts the multipart "file" field to WebP and stores it
// under prefix. It returns the public URL.
func uploadImage(c *gin.Context, store storage.Storage, prefix string) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", errUploadMissing
	}
	if fh.Size > maxUploadBytes {
		return "", errUploadTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	body, err := imaging.ToWebP(io.LimitReader(f, maxUploadBytes), maxImageSide)
	if errors.Is(err, imaging.ErrUnsupported) {
		return "", errUploadInvalid
	}
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.webp", prefix, uuid.NewString())
	url, err := store.Put(c.Request.Context(), key, body, imaging.ContentType)
	if errors.Is(err, storage.ErrDisabled) {
		return "", httperr.New(httperr.KindValidation, "storage_disabled", "Uploads are not configured.")
	}
	return url, err
}
