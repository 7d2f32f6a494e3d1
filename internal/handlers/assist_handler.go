package handlers

import (
	"fastpost/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AssistHandler exposes the generative assist directly.
type AssistHandler struct {
	assist *services.AssistService
	log    *zap.Logger
}

// NewAssistHandler creates a new AssistHandler.
func NewAssistHandler(assist *services.AssistService, log *zap.Logger) *AssistHandler {
	return &AssistHandler{
		assist: assist,
		log:    log,
	}
}

// RegisterRoutes registers the assist routes.
func (h *AssistHandler) RegisterRoutes(router fiber.Router) {
	assistRoutes := router.Group("/assist")
	assistRoutes.Post("/description", h.HandleDescribe)
	assistRoutes.Get("/status", h.HandleStatus)
}

// HandleDescribe generates a description for {category, title, specs}.
func (h *AssistHandler) HandleDescribe(c *fiber.Ctx) error {
	var req services.DescribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	text, err := h.assist.Describe(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, "Could not generate description", err)
	}
	return c.JSON(fiber.Map{"description": text})
}

// HandleStatus reports which assist requests are in flight.
func (h *AssistHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"describing": h.assist.Describing(),
		"analyzing":  h.assist.Analyzing(),
	})
}
