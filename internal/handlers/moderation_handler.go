package handlers

import (
	"fastpost/internal/middleware"
	"fastpost/internal/models"
	"fastpost/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ModerationHandler handles the admin review queue and dashboard.
type ModerationHandler struct {
	moderation *services.ModerationService
	listings   *services.ListingService
	dashboard  *services.DashboardService
	log        *zap.Logger
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(moderation *services.ModerationService, listings *services.ListingService, dashboard *services.DashboardService, log *zap.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderation: moderation,
		listings:   listings,
		dashboard:  dashboard,
		log:        log,
	}
}

// RegisterRoutes registers the admin routes. The router must already require a session.
func (h *ModerationHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin", middleware.AdminOnly())
	adminRoutes.Get("/dashboard", h.HandleDashboard)
	adminRoutes.Get("/listings/pending", h.HandlePending)
	adminRoutes.Post("/listings/:id/approve", h.HandleApprove)
	adminRoutes.Post("/listings/:id/reject", h.HandleReject)
}

// HandleDashboard returns stats, the review queue and insights.
func (h *ModerationHandler) HandleDashboard(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	view, err := h.dashboard.Dashboard(c.UserContext(), actor)
	if err != nil {
		return respondError(c, h.log, "Could not load dashboard", err)
	}
	return c.JSON(view)
}

// HandlePending returns the listings awaiting review.
func (h *ModerationHandler) HandlePending(c *fiber.Ctx) error {
	pending, err := h.listings.Pending()
	if err != nil {
		return respondError(c, h.log, "Could not retrieve pending listings", err)
	}
	return c.JSON(pending)
}

// HandleApprove approves a pending listing.
func (h *ModerationHandler) HandleApprove(c *fiber.Ctx) error {
	return h.transition(c, h.moderation.Approve)
}

// HandleReject rejects a pending listing.
func (h *ModerationHandler) HandleReject(c *fiber.Ctx) error {
	return h.transition(c, h.moderation.Reject)
}

func (h *ModerationHandler) transition(c *fiber.Ctx, apply func(actor models.User, id string) (bool, error)) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}
	listingID := c.Params("id")
	changed, err := apply(actor, listingID)
	if err != nil {
		return respondError(c, h.log, "Could not update listing status", err)
	}
	return c.JSON(fiber.Map{
		"changed":    changed,
		"listing_id": listingID,
	})
}
