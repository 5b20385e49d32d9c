package middleware

import (
	"net/http"

	"github.com/crmconsole/backend/internal/infrastructure/logger"
	"github.com/crmconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequirePermission creates middleware that requires a specific permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission creates middleware that requires any of the specified permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			logger.GetGinLogger(c).Warn("Permission denied", zap.Strings("required_any", permissions))
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Permission denied"))
			return
		}
		c.Next()
	}
}

// HasPermission reports whether the authenticated caller holds permission.
func HasPermission(c *gin.Context, permission string) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.HasPermission(permission)
}
