package middlewares

import (
	"context"
	"net/http"

	"civicecho-be/logger"
	"civicecho-be/models"

	"github.com/gin-gonic/gin"
)

// RoleResolver looks up the stored role of a user.
type RoleResolver interface {
	Role(ctx context.Context, uid string) (models.UserRole, error)
}

// RequireRole admits authenticated users whose stored role is one of roles.
// It must run after AuthMiddleware.
func RequireRole(resolver RoleResolver, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		uid := CurrentUserID(c)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
			return
		}

		role, err := resolver.Role(c.Request.Context(), uid)
		if err != nil {
			logger.FromContext(c.Request.Context(), nil).Error("Role lookup failed",
				logger.String("user_id", uid),
				logger.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
			return
		}
		c.Set(UserRoleKey, string(role))

		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
