package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"creditdoc/internal/logger"
)

const (
	RequestIDHeader   = "X-Request-ID"
	RequestIDLocalKey = "request_id"

	maxRequestIDLen = 128
)

// RequestID tags every request with an id: the caller's X-Request-ID when it is usable,
// a fresh UUID otherwise. The id is echoed in the response header, kept in locals for the
// error envelope, attached to the user context for service logs and set on the server span
// when a tracing middleware runs earlier in the chain.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !usableRequestID(id) {
			id = uuid.NewString()
		}

		ctx := c.UserContext()
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("http.request_id", id))
		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logger.WithRequestID(ctx, id))
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}

// usableRequestID rejects empty, oversized and non-printable ids; they end up in log lines
// and response headers verbatim.
func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
