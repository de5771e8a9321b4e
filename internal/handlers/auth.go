package handlers

import (
	"errors"

	"github.com/arnold/lifesync-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type unlockRequest struct {
	Passphrase string `json:"passphrase"`
}

// Unlock exchanges the owner passphrase for a session token.
func Unlock(c *fiber.Ctx) error {
	var req unlockRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if deps.Auth.Enabled() && req.Passphrase == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Passphrase is required",
		})
	}

	token, err := deps.Auth.Unlock(req.Passphrase)
	if errors.Is(err, middleware.ErrInvalidPassphrase) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"required": deps.Auth.Enabled(),
	})
}
