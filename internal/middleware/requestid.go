package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID stamps every request with a unique identifier (echoing one
// supplied by an upstream proxy via X-Request-ID, generating a fresh
// UUID otherwise) and attaches it to the response header and fiber
// locals, so the errors cmd/api logs can be correlated with the
// response a client received.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}
