package middleware

import (
	"net/http"
	"strings"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/utils"
	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	identityKey      = "identity"
	identityErrorKey = "identity_error"

	HeaderUserID   = "User-Id"
	HeaderUserRole = "User-Role"
)

// Identity resolves who the caller is and stores it on the context. A valid
// bearer token wins. An unusable token leaves the request anonymous and
// records why, so public routes still work and RequireIdentity can report
// it. Without a token, the User-Id / User-Role headers are accepted as-is
// when trustHeaders is set.
func Identity(jwtSecret string, trustHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				c.Set(identityErrorKey, "Invalid authorization format. Use: Bearer <token>")
				c.Next()
				return
			}

			claims, err := utils.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				logger.Log.Debug("Rejected bearer token",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				c.Set(identityErrorKey, "Invalid or expired token")
				c.Next()
				return
			}

			c.Set(identityKey, models.Identity{
				UserID:   claims.UserID,
				Role:     claims.Role,
				Verified: true,
			})
			c.Next()
			return
		}

		if trustHeaders {
			if userID := c.GetHeader(HeaderUserID); userID != "" {
				c.Set(identityKey, models.Identity{
					UserID: userID,
					Role:   models.Role(c.GetHeader(HeaderUserRole)),
				})
			}
		}

		c.Next()
	}
}

// RequireIdentity rejects requests that Identity could not resolve.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			abortUnauthenticated(c)
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity stored by Identity, if any.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

// RequireAdmin allows only callers whose resolved role is admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// abortUnauthenticated answers 401, naming the token problem when there was
// one.
func abortUnauthenticated(c *gin.Context) {
	msg := "Authentication required"
	if reason := c.GetString(identityErrorKey); reason != "" {
		msg = reason
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
