package services

import (
	"fmt"
	"time"

	"fastpost/internal/models"
	"fastpost/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher delivers listing events to interested consumers.
type EventPublisher interface {
	PublishListingEvent(event models.ListingEvent) error
}

// ListingOptions tunes listing creation and stats.
type ListingOptions struct {
	PlaceholderImage string
	VehicleFee       float64
}

// ListingService handles business logic related to listings.
type ListingService struct {
	repo      repositories.ListingRepository
	publisher EventPublisher
	validate  *validator.Validate
	log       *zap.Logger
	opts      ListingOptions
	feed      Feed
	now       func() time.Time
}

// NewListingService creates a new ListingService. publisher may be nil.
func NewListingService(repo repositories.ListingRepository, publisher EventPublisher, log *zap.Logger, opts ListingOptions) *ListingService {
	return &ListingService{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// CreateListing validates the input, derives currency and status from the
// category and stores the listing at the front of the feed.
func (s *ListingService) CreateListing(actor models.User, input models.CreateListingInput) (*models.Listing, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	details := models.DefaultDetails(input.Category)
	if input.Metadata != nil {
		if err := input.Metadata.MatchCategory(input.Category); err != nil {
			return nil, &ValidationError{Fields: map[string]string{"metadata": err.Error()}}
		}
		details = *input.Metadata
	}

	images := make([]string, len(input.Images))
	copy(images, input.Images)
	if len(images) == 0 {
		images = []string{s.opts.PlaceholderImage}
	}

	listing := &models.Listing{
		ID:          uuid.New().String(),
		OwnerID:     actor.ID,
		Category:    input.Category,
		Title:       input.Title,
		Description: input.Description,
		Price:       *input.Price,
		Currency:    models.CurrencyFor(input.Category),
		Images:      images,
		Status:      models.InitialStatusFor(input.Category),
		CreatedAt:   s.now().UTC(),
		IsVip:       input.IsVip,
		Metadata:    details,
	}

	if err := s.repo.Insert(listing); err != nil {
		return nil, fmt.Errorf("failed to store listing: %w", err)
	}

	s.log.Info("listing created",
		zap.String("listing_id", listing.ID),
		zap.String("owner_id", listing.OwnerID),
		zap.String("category", string(listing.Category)),
		zap.String("status", string(listing.Status)),
	)
	publishEvent(s.publisher, s.log, models.EventListingCreated, *listing)
	return listing, nil
}

// Browse returns the listings visible for the given search inputs.
func (s *ListingService) Browse(query string, category *models.Category) ([]models.Listing, error) {
	listings, err := s.feed.Visible(s.repo, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to browse listings: %w", err)
	}
	return listings, nil
}

// Pending returns the listings waiting for moderation, newest first.
func (s *ListingService) Pending() ([]models.Listing, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending listings: %w", err)
	}
	pending := make([]models.Listing, 0)
	for _, l := range all {
		if l.Status == models.StatusPending {
			pending = append(pending, l)
		}
	}
	return pending, nil
}

// Stats aggregates the counts shown on the admin dashboard.
func (s *ListingService) Stats() (models.MarketStats, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return models.MarketStats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	stats := models.MarketStats{TotalListings: len(all)}
	vehicles := 0
	for _, l := range all {
		if l.Status == models.StatusPending {
			stats.PendingCount++
		}
		if l.Category == models.CategoryVehicle {
			vehicles++
		}
	}
	stats.RevenueProxy = float64(vehicles) * s.opts.VehicleFee
	return stats, nil
}

// CountByOwner returns how many listings the actor has posted.
func (s *ListingService) CountByOwner(ownerID string) (int, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	n := 0
	for _, l := range all {
		if l.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// publishEvent sends an event when a publisher is configured. Failures are logged only.
func publishEvent(p EventPublisher, log *zap.Logger, eventType string, l models.Listing) {
	if p == nil {
		return
	}
	if err := p.PublishListingEvent(models.NewListingEvent(eventType, l)); err != nil {
		log.Warn("failed to publish listing event",
			zap.String("type", eventType),
			zap.String("listing_id", l.ID),
			zap.Error(err),
		)
	}
}
