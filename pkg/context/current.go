// Package context carries per-request metadata (request id, client address,
// user id) through a context.Context.
package context

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Current is filled in by the HTTP middleware chain. The user id is only
// known once authentication has run.
type Current struct {
	mu        sync.RWMutex
	requestID string
	clientIP  string
	userAgent string
	userID    int
}

func NewCurrent(requestID, clientIP, userAgent string) *Current {
	return &Current{
		requestID: requestID,
		clientIP:  clientIP,
		userAgent: userAgent,
	}
}

func (c *Current) RequestID() string {
	return c.requestID
}

func (c *Current) ClientIP() string {
	return c.clientIP
}

func (c *Current) SetUserID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

func (c *Current) UserID() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID, c.userID > 0
}

// Fields renders the metadata as log fields.
func (c *Current) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("request_id", c.requestID),
		zap.String("client_ip", c.clientIP),
		zap.String("user_agent", c.userAgent),
	}

	if id, ok := c.UserID(); ok {
		fields = append(fields, zap.Int("user_id", id))
	}

	return fields
}

type contextKey struct{}

func WithCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, contextKey{}, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(contextKey{}).(*Current)
	return current, ok
}

// RequestIDFrom returns the request id, or "" outside a request.
func RequestIDFrom(ctx context.Context) string {
	if current, ok := FromContext(ctx); ok {
		return current.RequestID()
	}

	return ""
}
