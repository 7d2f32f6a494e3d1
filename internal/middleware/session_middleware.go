package middleware

import (
	"strings"

	"fastpost/internal/models"
	"fastpost/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const actorKey = "actor"

// SessionRequired is a Fiber middleware that resolves the bearer session token
// to the active actor and stores it in the request context.
func SessionRequired(sessionService *services.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		actor, err := sessionService.ActorFromToken(parts[1])
		if err != nil {
			log.Debug("session validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
				"error":   err.Error(),
			})
		}

		c.Locals(actorKey, *actor)
		return c.Next()
	}
}

// AdminOnly rejects actors without the admin role. It must run after SessionRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := Actor(c)
		if !ok || !actor.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin role required",
			})
		}
		return c.Next()
	}
}

// Actor returns the actor stored by SessionRequired.
func Actor(c *fiber.Ctx) (models.User, bool) {
	actor, ok := c.Locals(actorKey).(models.User)
	return actor, ok
}
