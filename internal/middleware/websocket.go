package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	LocalRoomID = "wsRoomID"
)

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid WebSocket connection attempts.
// It also checks that the room and client ids are present before allowing the upgrade.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		roomID := c.Params("roomId")
		if roomID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "room ID is required",
			})
		}
		if ClientID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "client ID is required",
			})
		}

		// The upgraded connection has its own context; locals carry the ids across.
		c.Locals(LocalRoomID, roomID)
		return c.Next()
	}
}
