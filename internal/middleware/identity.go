package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// UserIDHeader carries the caller's id, set by the upstream gateway.
const UserIDHeader = "X-User-ID"

const (
	localsKey   = "session_id"
	maxIDLength = 255
)

// IdentityMiddleware resolves the session id that owns carts.
type IdentityMiddleware struct {
	fallback string
}

// NewIdentityMiddleware creates the middleware. devUserID is used when the
// header is missing and only in development.
func NewIdentityMiddleware(devUserID string, isDev bool) *IdentityMiddleware {
	m := &IdentityMiddleware{}
	if isDev {
		m.fallback = strings.TrimSpace(devUserID)
	}
	return m
}

// RequireSession rejects requests without an identity with a 401.
func (m *IdentityMiddleware) RequireSession(c fiber.Ctx) error {
	id := m.resolve(c)
	if id == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "missing " + UserIDHeader + " header",
		})
	}
	c.Locals(localsKey, id)
	return c.Next()
}

// OptionalSession records the identity when one is present.
func (m *IdentityMiddleware) OptionalSession(c fiber.Ctx) error {
	if id := m.resolve(c); id != "" {
		c.Locals(localsKey, id)
	}
	return c.Next()
}

func (m *IdentityMiddleware) resolve(c fiber.Ctx) string {
	if id := cleanID(c.Get(UserIDHeader)); id != "" {
		return id
	}
	return m.fallback
}

// cleanID trims the header value and rejects oversized or control-character
// ids.
func cleanID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) > maxIDLength {
		return ""
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return ""
		}
	}
	return id
}

// UserID returns the session id resolved for the request, or "".
func UserID(c fiber.Ctx) string {
	id, _ := c.Locals(localsKey).(string)
	return id
}
