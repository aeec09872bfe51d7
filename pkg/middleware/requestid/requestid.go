// Package requestid tags every request with an ID so gateway log lines can be
// correlated with the upstream backend's.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header matches what the upstream backend emits, so an ID set by either side
	// survives the hop.
	Header = "X-Request-ID"

	contextKey = "requestID"
)

// Middleware reuses an inbound request ID when the caller sent one and mints a fresh
// UUID otherwise. The ID is stored on the context and echoed on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID bound to the context, or "" outside the middleware.
func Value(c *gin.Context) string {
	if id, ok := c.Get(contextKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
