package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// User identity is established upstream (gateway/session layer) and handed to
// this service via the X-User-ID header.
const userIDHeader = "X-User-ID"

func requireUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Get(userIDHeader)
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "X-User-ID header required")
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid X-User-ID header")
	}

	return userID, nil
}

// optionalUserID returns nil for anonymous/demo requests.
func optionalUserID(c *fiber.Ctx) *uuid.UUID {
	raw := c.Get(userIDHeader)
	if raw == "" {
		return nil
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}

	return &userID
}
