package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	. "tasktracker/internal/adapter/http/helper"
	"tasktracker/internal/core/model/response"
	"tasktracker/internal/core/port"
)

type HealthHandler struct {
	checks map[string]port.Pinger
}

// NewHealthHandler probes every named dependency on readiness checks.
func NewHealthHandler(checks map[string]port.Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	SendSuccess(c, http.StatusOK, response.HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := response.HealthResponse{Status: "ready", Checks: map[string]string{}}

	for name, pinger := range h.checks {
		if err := pinger.PingContext(ctx); err != nil {
			c.Error(err)
			status = http.StatusServiceUnavailable
			body.Status = "unavailable"
			body.Checks[name] = "unavailable"
			continue
		}

		body.Checks[name] = "ok"
	}

	SendSuccess(c, status, body)
}
