package handlers

import (
	"fastpost/internal/middleware"
	"fastpost/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHandler handles HTTP requests that pick the active actor.
type SessionHandler struct {
	sessionService *services.SessionService
	validate       *validator.Validate
	log            *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *services.SessionService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		validate:       validator.New(),
		log:            log,
	}
}

// RegisterRoutes registers the public session routes.
func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/session", h.HandleStartSession)
	router.Get("/session/actors", h.HandleListActors)
}

// RegisterProtectedRoutes registers the routes that need an active session.
func (h *SessionHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/session/me", h.HandleMe)
}

// StartSessionRequest represents the request body for starting a session.
type StartSessionRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// HandleStartSession makes one of the demo actors active and issues a token.
func (h *SessionHandler) HandleStartSession(c *fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"user_id": "Field 'user_id' failed on the 'required' tag"},
		})
	}

	token, actor, err := h.sessionService.StartSession(req.UserID)
	if err != nil {
		return respondError(c, h.log, "Could not start session", err)
	}

	return c.JSON(fiber.Map{
		"message": "Session started",
		"token":   token,
		"user":    actor,
	})
}

// HandleListActors lists the actors a session can be started for.
func (h *SessionHandler) HandleListActors(c *fiber.Ctx) error {
	actors, err := h.sessionService.Actors()
	if err != nil {
		return respondError(c, h.log, "Could not retrieve actors", err)
	}
	return c.JSON(actors)
}

// HandleMe returns the active actor.
func (h *SessionHandler) HandleMe(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	return c.JSON(actor)
}
