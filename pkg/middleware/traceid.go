package middleware

import (
	"dishdash/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-ID"

// TraceIDMiddleware reuses an incoming X-Trace-ID or mints one, and makes it
// visible to handlers, the request context logger and the response.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		c.Set("trace_id", traceID)
		c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), traceID))
		c.Writer.Header().Set(TraceIDHeader, traceID)
		c.Next()
	}
}
