package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ct "tasktracker/pkg/context"
)

const RequestIDHeader = "X-Request-ID"

const currentKey = "current"

// CurrentMiddleware attaches per-request metadata to the request context and
// echoes the request id back to the client.
func CurrentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)

		if requestID == "" {
			requestID = uuid.NewString()
		}

		current := ct.NewCurrent(requestID, clientIP(c), c.Request.UserAgent())

		c.Request = c.Request.WithContext(ct.WithCurrent(c.Request.Context(), current))
		c.Set(currentKey, current)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

func GetCurrent(c *gin.Context) *ct.Current {
	if value, ok := c.Get(currentKey); ok {
		if current, ok := value.(*ct.Current); ok {
			return current
		}
	}

	current, _ := ct.FromContext(c.Request.Context())

	return current
}

// clientIP takes the first X-Forwarded-For hop when present.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")

		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	return c.ClientIP()
}
