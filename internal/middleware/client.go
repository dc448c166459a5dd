package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDQuery  = "clientId"
	// LocalClientID is the fiber.Ctx locals key holding the resolved client id.
	LocalClientID = "clientID"
)

// EnsureClientID resolves the caller's client id from the header or query string. Clients
// that send none are anonymous observers: they get a fresh id, echoed back in the header
// so they can reuse it.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(LocalClientID) != nil {
			return c.Next()
		}

		clientID := c.Get(ClientIDHeader)
		if clientID == "" {
			clientID = c.Query(ClientIDQuery)
		}
		if clientID == "" {
			clientID = uuid.New().String()
		}

		c.Locals(LocalClientID, clientID)
		c.Set(ClientIDHeader, clientID)
		return c.Next()
	}
}

// ClientID returns the id stored by EnsureClientID.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalClientID).(string)
	return id
}
