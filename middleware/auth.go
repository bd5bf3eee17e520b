package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"staybook-backend/models"
	"staybook-backend/utils"
)

const userContextKey = "currentUser"

// IdentityClaims is what the external identity provider puts in its tokens.
// Only the subject id is required; email and name enrich the local record
// when present.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Auth verifies the bearer token and resolves the subject id to a local
// user, provisioning one on first sight. Every authenticated operation goes
// through this resolve-or-provision step; there is no ambient global user.
func Auth(db *gorm.DB) gin.HandlerFunc {
	secret := []byte(os.Getenv("AUTH_TOKEN_SECRET"))

	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		claims := &IdentityClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := resolveOrProvision(db, claims)
		if err != nil {
			logrus.WithError(err).WithField("subject", claims.Subject).
				Error("identity resolution failed")
			utils.JSONError(c, http.StatusInternalServerError, "Server error")
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireOwner gates owner-only routes. Must run after Auth.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsHotelOwner() {
			utils.JSONError(c, http.StatusForbidden, "Hotel owner access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the resolved identity for the request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func resolveOrProvision(db *gorm.DB, claims *IdentityClaims) (*models.User, error) {
	var user models.User
	err := db.Where("subject_id = ?", claims.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Username:  claims.Name,
		Role:      models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		// Lost a provisioning race with a concurrent request; reload.
		var existing models.User
		if err2 := db.Where("subject_id = ?", claims.Subject).First(&existing).Error; err2 == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &user, nil
}
