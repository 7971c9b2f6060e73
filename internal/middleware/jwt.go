package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campus-ops/reflow-api/internal/models"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
	"github.com/campus-ops/reflow-api/pkg/response"
)

// ContextUserKey is the gin context key storing access claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid HS256 bearer token.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func claimsFromHeader(header, secret string) (*models.AccessClaims, error) {
	if header == "" {
		return nil, appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}

	claims := &models.AccessClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// ClaimsFromContext extracts access claims stored by JWT middleware.
func ClaimsFromContext(c *gin.Context) *models.AccessClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}
