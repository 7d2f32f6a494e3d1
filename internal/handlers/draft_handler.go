package handlers

import (
	"fastpost/internal/middleware"
	"fastpost/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DraftHandler handles the create form of the active actor.
type DraftHandler struct {
	drafts *services.DraftService
	shell  *services.ShellService
	log    *zap.Logger
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(drafts *services.DraftService, shell *services.ShellService, log *zap.Logger) *DraftHandler {
	return &DraftHandler{
		drafts: drafts,
		shell:  shell,
		log:    log,
	}
}

// RegisterRoutes registers the draft routes.
func (h *DraftHandler) RegisterRoutes(router fiber.Router) {
	draftRoutes := router.Group("/drafts/current")
	draftRoutes.Get("/", h.HandleGet)
	draftRoutes.Put("/", h.HandleUpdate)
	draftRoutes.Post("/describe", h.HandleDescribe)
	draftRoutes.Post("/submit", h.HandleSubmit)
}

// HandleGet returns the current draft.
func (h *DraftHandler) HandleGet(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	return c.JSON(h.drafts.Get(actor.ID))
}

// HandleUpdate applies the fields present in the body to the draft.
func (h *DraftHandler) HandleUpdate(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	var input services.DraftInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}
	draft, err := h.drafts.Update(actor.ID, input)
	if err != nil {
		return respondError(c, h.log, "Could not update draft", err)
	}
	return c.JSON(draft)
}

// HandleDescribe fills the draft description from the assist backend.
func (h *DraftHandler) HandleDescribe(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	draft, applied, err := h.drafts.GenerateDescription(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, h.log, "Could not generate description", err)
	}
	return c.JSON(fiber.Map{
		"draft":   draft,
		"applied": applied,
	})
}

// HandleSubmit publishes the draft as a listing and returns the actor to the home tab.
func (h *DraftHandler) HandleSubmit(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	listing, err := h.drafts.Submit(actor)
	if err != nil {
		return respondError(c, h.log, "Could not submit draft", err)
	}
	if _, err := h.shell.SelectTab(actor, services.TabHome); err != nil {
		h.log.Warn("failed to return to home tab", zap.String("actor_id", actor.ID), zap.Error(err))
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}
