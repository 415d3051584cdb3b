package middleware

import (
	"context"  // Request context
	"net/http" // HTTP status codes

	"crowdfund_ledger/internal/domain" // Domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// UserLookup resolves an account by id
type UserLookup interface {
	User(ctx context.Context, id string) (*domain.User, error)
}

// AdminOnlyMiddleware checks the user's role from the store on each request,
// so a demoted admin loses access before the token expires
func AdminOnlyMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "unauthorized"})
			return
		}
		user, err := users.User(c.Request.Context(), userID)
		if err != nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required", "code": "forbidden"})
			return
		}
		c.Next()
	}
}
