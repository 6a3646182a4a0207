package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carrent/rental-backend/internal/auth"
	"github.com/carrent/rental-backend/internal/user"
)

// RequireRole ensures the authenticated user is active and holds one of the given roles.
// With no roles it only resolves the caller. The resolved role is stored on the context,
// so a later RequireRole in the same chain skips the lookup.
// It MUST be used after auth.AuthRequired middleware.
func RequireRole(userService user.Service, roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		role := user.Role(auth.GetUserRole(c))
		if role == "" {
			u, err := userService.GetByID(c.Request.Context(), userID)
			if err != nil || !u.IsActive {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			role = u.Role
			auth.SetUserRole(c, string(role))
		}

		if len(roles) == 0 {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
	}
}
