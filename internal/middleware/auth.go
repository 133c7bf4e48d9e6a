package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const ContextPrincipal = "principal"

const tokenTTL = 24 * time.Hour

// Principal is the authenticated operator of a request.
type Principal struct {
	UserID  uint
	OwnerID uint
	Role    string
}

func (p Principal) IsOwner() bool {
	return p.Role == models.RoleOwner
}

type claims struct {
	OwnerID uint   `json:"owner_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for user.
func IssueToken(secret string, user *models.User, now time.Time) (string, error) {
	c := claims{
		OwnerID: user.TenantID(),
		Role:    user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uintToString(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func ParseToken(secret, token string) (Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, err
	}

	id, ok := parseUint(c.Subject)
	if !ok || c.OwnerID == 0 {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}
	return Principal{UserID: id, OwnerID: c.OwnerID, Role: c.Role}, nil
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header required.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Bearer token required.")
			return
		}

		p, err := ParseToken(secret, parts[1])
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "Invalid or expired token.")
			return
		}

		c.Set(ContextPrincipal, p)
		c.Next()
	}
}

// RequireOwner rejects staff principals. Mount after AuthMiddleware.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).IsOwner() {
			httperr.Forbidden(c, "owner_only", "Only the owner can change this resource.")
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal set by AuthMiddleware.
func PrincipalFrom(c *gin.Context) Principal {
	return c.MustGet(ContextPrincipal).(Principal)
}
