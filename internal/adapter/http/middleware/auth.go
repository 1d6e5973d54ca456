package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/adapter/http/helper"
	"tasktracker/internal/core/port"
)

const (
	UserIDKey         = "x-user-id"
	SessionCookieName = "session"
)

// AuthMiddleware resolves the caller from a bearer token or the session
// cookie and stores the user id under UserIDKey.
func AuthMiddleware(tokens port.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)

		if !ok {
			helper.SendUnauthorizedError(c, "Unauthorized request")
			return
		}

		userId, err := tokens.VerifyToken(token)

		if err != nil {
			helper.SendUnauthorizedError(c, "Unauthorized request")
			return
		}

		c.Set(UserIDKey, userId)

		if current := GetCurrent(c); current != nil {
			current.SetUserID(userId)
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if bearer := c.GetHeader("Authorization"); bearer != "" {
		token, found := strings.CutPrefix(bearer, "Bearer ")

		if !found || token == "" {
			return "", false
		}

		return token, true
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie, true
	}

	return "", false
}

// GetUserID returns the id stored by AuthMiddleware.
func GetUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get(UserIDKey)

	if !exists {
		return 0, false
	}

	userId, ok := value.(int)

	return userId, ok
}
