package handlers

import (
	"fastpost/internal/middleware"
	"fastpost/internal/models"
	"fastpost/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ListingHandler handles HTTP requests for the listing feed.
type ListingHandler struct {
	service *services.ListingService
	log     *zap.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *services.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the listing routes.
func (h *ListingHandler) RegisterRoutes(router fiber.Router) {
	listingRoutes := router.Group("/listings")
	listingRoutes.Get("/", h.HandleBrowse)
	listingRoutes.Post("/", h.HandleCreateListing)
}

// HandleBrowse returns the feed filtered by the q and category query parameters.
func (h *ListingHandler) HandleBrowse(c *fiber.Ctx) error {
	var category *models.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := models.ParseCategory(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unknown category",
				"error":   err.Error(),
			})
		}
		category = &parsed
	}

	listings, err := h.service.Browse(c.Query("q"), category)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve listings", err)
	}
	return c.JSON(listings)
}

// HandleCreateListing creates a listing owned by the active actor.
func (h *ListingHandler) HandleCreateListing(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return noActor(c)
	}

	var input models.CreateListingInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	listing, err := h.service.CreateListing(actor, input)
	if err != nil {
		return respondError(c, h.log, "Could not create listing", err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}
