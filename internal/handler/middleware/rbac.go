package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinicdesk/internal/domain"
)

// RequirePermission gates a route on a single capability. Admin accounts
// pass every check. Must run after Authenticate.
func RequirePermission(resource, action string) gin.HandlerFunc {
	required := domain.NewPermission(resource, action)
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if account == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !account.HasPermission(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "access denied",
				"required": string(required),
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin gates a route on the admin flag.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if account == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !account.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}
