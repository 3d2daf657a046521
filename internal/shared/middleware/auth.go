package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/internal/shared/response"
	"karwan-auliya/pkg/jwt"
)

// OptionalAuth attaches a session when a valid bearer token is present.
// Anonymous requests continue; services decide whether they need a user.
func OptionalAuth(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString("request_id")).Msg("ignoring invalid token")
			c.Next()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.Next()
			return
		}

		session := &auth.Session{UserID: userID, Email: claims.Email, Role: claims.Role}
		c.Set("userID", userID)
		c.Set("role", claims.Role)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// RequireAuth rejects requests that carry no session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.RequireUser(c.Request.Context()); err != nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
