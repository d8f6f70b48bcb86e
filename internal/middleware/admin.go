package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oneteam-app/backend/pkg/response"
)

// RequireAdmin returns a middleware that allows only administrators.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get(ContextIsAdmin)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		isAdmin, _ := val.(bool)
		if !isAdmin {
			response.Forbidden(c, "administrator privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}
