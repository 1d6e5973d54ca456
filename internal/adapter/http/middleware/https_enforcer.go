package middleware

import (
	"net"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPSEnforcer struct {
	enabled bool
	logger  *zap.Logger
}

func NewHTTPSEnforcer(enabled bool, logger *zap.Logger) *HTTPSEnforcer {
	return &HTTPSEnforcer{
		enabled: enabled,
		logger:  logger,
	}
}

// HTTPSMiddleware redirects plain HTTP requests to the same URL over HTTPS.
// Requests already behind a TLS terminating proxy and loopback hosts pass.
func (he *HTTPSEnforcer) HTTPSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !he.enabled || isSecure(c.Request) || isLoopback(c.Request.Host) {
			c.Next()
			return
		}

		target := url.URL{
			Scheme:   "https",
			Host:     c.Request.Host,
			Path:     c.Request.URL.Path,
			RawPath:  c.Request.URL.RawPath,
			RawQuery: c.Request.URL.RawQuery,
		}

		// 308 keeps the method and body of writes.
		status := http.StatusPermanentRedirect

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			status = http.StatusMovedPermanently
		}

		he.logger.Debug("redirecting to https",
			zap.String("method", c.Request.Method),
			zap.String("target", target.String()))

		c.Redirect(status, target.String())
		c.Abort()
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

func isLoopback(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)

	return ip != nil && ip.IsLoopback()
}
