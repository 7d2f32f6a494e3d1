package handlers

import (
	"fastpost/internal/middleware"
	"fastpost/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ShellHandler handles navigation, theme and language state.
type ShellHandler struct {
	shell    *services.ShellService
	listings *services.ListingService
	log      *zap.Logger
}

// NewShellHandler creates a new ShellHandler.
func NewShellHandler(shell *services.ShellService, listings *services.ListingService, log *zap.Logger) *ShellHandler {
	return &ShellHandler{
		shell:    shell,
		listings: listings,
		log:      log,
	}
}

// RegisterRoutes registers the shell and profile routes.
func (h *ShellHandler) RegisterRoutes(router fiber.Router) {
	shellRoutes := router.Group("/shell")
	shellRoutes.Get("/", h.HandleState)
	shellRoutes.Put("/tab", h.HandleSelectTab)
	shellRoutes.Post("/theme/toggle", h.HandleToggleTheme)
	shellRoutes.Put("/language", h.HandleSetLanguage)
	router.Get("/profile", h.HandleProfile)
}

// HandleState returns the shell state of the active actor.
func (h *ShellHandler) HandleState(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	return c.JSON(h.shell.State(actor))
}

// HandleSelectTab switches the active tab.
func (h *ShellHandler) HandleSelectTab(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	var body struct {
		Tab services.Tab `json:"tab"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}
	state, err := h.shell.SelectTab(actor, body.Tab)
	if err != nil {
		return respondError(c, h.log, "Could not switch tab", err)
	}
	return c.JSON(state)
}

// HandleToggleTheme flips the theme.
func (h *ShellHandler) HandleToggleTheme(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	return c.JSON(h.shell.ToggleTheme(actor))
}

// HandleSetLanguage switches the display language.
func (h *ShellHandler) HandleSetLanguage(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	var body struct {
		Language services.Language `json:"language"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}
	state, err := h.shell.SetLanguage(actor, body.Language)
	if err != nil {
		return respondError(c, h.log, "Could not switch language", err)
	}
	return c.JSON(state)
}

// HandleProfile returns the active actor and the number of listings they own.
func (h *ShellHandler) HandleProfile(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	count, err := h.listings.CountByOwner(actor.ID)
	if err != nil {
		return respondError(c, h.log, "Could not load profile", err)
	}
	return c.JSON(fiber.Map{
		"user":        actor,
		"my_listings": count,
	})
}
