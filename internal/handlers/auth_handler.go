package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

var (
	errEmailTaken         = httperr.New(httperr.KindConflict, "email_already_exists", "An account with this email already exists.")
	errInvalidEmailDomain = httperr.New(httperr.KindValidation, "invalid_email_domain", "The email domain does not look valid.")
)

type AuthHandler struct {
	db      *gorm.DB
	config  *config.Config
	emailOK func(string) bool
	now     func() time.Time
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, emailOK func(string) bool) *AuthHandler {
	if emailOK == nil {
		emailOK = func(string) bool { return true }
	}
	return &AuthHandler{db: db, config: cfg, emailOK: emailOK, now: time.Now}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID      uint   `json:"id"`
	OwnerID uint   `json:"owner_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Role    string `json:"role"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:      u.ID,
		OwnerID: u.TenantID(),
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Role:    u.Role,
	}
}

// --------- Handlers ---------

// Register creates an owner account. Shops are added afterwards.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, ok := h.createUser(c, req, models.RoleOwner, nil)
	if !ok {
		return
	}
	h.respondWithToken(c, user, true)
}

// CreateStaff adds a read-only account that works on the caller's data.
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	p := middleware.PrincipalFrom(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ownerID := p.OwnerID
	user, ok := h.createUser(c, req, models.RoleStaff, &ownerID)
	if !ok {
		return
	}
	httpresp.Created(c, toUserResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
		return
	}
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
		return
	}

	h.respondWithToken(c, &user, false)
}

// ======================================================
// HELPERS
// ======================================================

func (h *AuthHandler) createUser(c *gin.Context, req RegisterRequest, role string, ownerID *uint) (*models.User, bool) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !h.emailOK(email) {
		httperr.FromError(c, errInvalidEmailDomain)
		return nil, false
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	if count > 0 {
		httperr.FromError(c, errEmailTaken)
		return nil, false
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not store the password.")
		return nil, false
	}

	user := models.User{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         role,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.FromError(c, errEmailTaken)
			return nil, false
		}
		httperr.FromError(c, err)
		return nil, false
	}
	return &user, true
}

func (h *AuthHandler) respondWithToken(c *gin.Context, user *models.User, created bool) {
	token, err := middleware.IssueToken(h.config.JWTSecret, user, h.now())
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue a token.")
		return
	}

	body := gin.H{"user": toUserResponse(user), "token": token}
	if created {
		httpresp.Created(c, body)
		return
	}
	httpresp.OK(c, body)
}
