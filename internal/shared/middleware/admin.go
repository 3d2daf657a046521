package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/internal/shared/response"
)

// AdminMiddleware checks the session role set by OptionalAuth.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.RequireAdmin(c.Request.Context()); err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) {
				response.Unauthorized(c, "authentication required")
			} else {
				response.Forbidden(c, "admin role required")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
