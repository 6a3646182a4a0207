package auth

import "github.com/gin-gonic/gin"

const userIDKey = "userID"

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetUserID stores the authenticated user's ID on the request context.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

const userRoleKey = "userRole"

// GetUserRole returns the role resolved by a role middleware, or empty string.
func GetUserRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}

// SetUserRole stores the authenticated user's role on the request context.
func SetUserRole(c *gin.Context, role string) {
	c.Set(userRoleKey, role)
}
