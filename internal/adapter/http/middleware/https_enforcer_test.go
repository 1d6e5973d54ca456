package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func serveThroughEnforcer(enabled bool, host string, headers map[string]string) *httptest.ResponseRecorder {
	return serveMethodThroughEnforcer(enabled, "GET", host, headers)
}

func serveMethodThroughEnforcer(enabled bool, method, host string, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewHTTPSEnforcer(enabled, zap.NewNop()).HTTPSMiddleware())
	router.Handle(method, "/api/todos", func(c *gin.Context) { c.Status(200) })

	req := httptest.NewRequest(method, "http://"+host+"/api/todos?completed=true", nil)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestHTTPSEnforcer_Disabled(t *testing.T) {
	RegisterTestingT(t)

	Expect(serveThroughEnforcer(false, "tasks.example.com", nil).Code).To(Equal(200))
}

func TestHTTPSEnforcer_RedirectsPlainHTTP(t *testing.T) {
	RegisterTestingT(t)

	w := serveThroughEnforcer(true, "tasks.example.com", nil)

	Expect(w.Code).To(Equal(http.StatusMovedPermanently))
	Expect(w.Header().Get("Location")).To(Equal("https://tasks.example.com/api/todos?completed=true"))
}

func TestHTTPSEnforcer_TrustsForwardedProto(t *testing.T) {
	RegisterTestingT(t)

	w := serveThroughEnforcer(true, "tasks.example.com", map[string]string{"X-Forwarded-Proto": "https"})

	Expect(w.Code).To(Equal(200))
}

func TestHTTPSEnforcer_AllowsLocalhost(t *testing.T) {
	RegisterTestingT(t)

	Expect(serveThroughEnforcer(true, "localhost:8080", nil).Code).To(Equal(200))
}

func TestHTTPSEnforcer_KeepsMethodForWrites(t *testing.T) {
	RegisterTestingT(t)

	w := serveMethodThroughEnforcer(true, "POST", "tasks.example.com", nil)

	Expect(w.Code).To(Equal(http.StatusPermanentRedirect))
	Expect(w.Header().Get("Location")).To(Equal("https://tasks.example.com/api/todos?completed=true"))
}

func TestHTTPSEnforcer_AllowsLoopbackIP(t *testing.T) {
	RegisterTestingT(t)

	Expect(serveThroughEnforcer(true, "127.0.0.1:8080", nil).Code).To(Equal(200))
	Expect(serveThroughEnforcer(true, "[::1]:8080", nil).Code).To(Equal(200))
}
