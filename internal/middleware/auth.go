package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gallerygate/api/internal/models"
	"gallerygate/api/internal/supabase"
)

// UserResolver turns a bearer token into an identity record. The real
// implementation is the hosted identity client; tests substitute fakes.
type UserResolver interface {
	UserByToken(ctx context.Context, token string) (supabase.AuthUser, error)
}

// Auth is the role guard's first half. It strips an optional "Bearer "
// prefix from the Authorization header, resolves the remaining token
// against the identity service on every request (no caching), and puts
// the user with its metadata role on the context. Empty token or failed
// resolution both end the request with 401.
func Auth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		authUser, err := resolver.UserByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set("access_token", token)
		c.Set("current_user", models.User{
			ID:    authUser.ID,
			Email: authUser.Email,
			Role:  models.UserRole(authUser.Role()),
		})

		c.Next()
	}
}

// RequireRole is the guard's second half: it compares the resolved role
// against the canonical constant and denies mismatches with 403.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userVal, exists := c.Get("current_user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
