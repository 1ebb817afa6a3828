package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/pkg/auth"
)

const ctxKeyAccount = "current_account"

// Authenticate validates a Bearer access token and loads the account behind
// it. The account, with its groups and permissions, is stored on the gin
// context for downstream permission checks.
func Authenticate(jwtManager *auth.JWTManager, accounts domain.AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "authorization header must be a Bearer token")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		account, err := accounts.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil || !account.IsActive || account.IsLocked() {
			abortUnauthorized(c, "account unavailable")
			return
		}

		c.Set(ctxKeyAccount, account)
		c.Next()
	}
}

// CurrentAccount returns the authenticated account, or nil on public routes.
func CurrentAccount(c *gin.Context) *domain.Account {
	v, ok := c.Get(ctxKeyAccount)
	if !ok {
		return nil
	}
	account, _ := v.(*domain.Account)
	return account
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
