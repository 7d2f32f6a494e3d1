package services

import (
	"fmt"

	"fastpost/internal/models"
	"fastpost/internal/repositories"

	"go.uber.org/zap"
)

// ModerationService moves pending listings to approved or rejected.
// Only admins may call it, and only pending listings can move.
type ModerationService struct {
	repo      repositories.ListingRepository
	publisher EventPublisher
	log       *zap.Logger
}

// NewModerationService creates a new ModerationService. publisher may be nil.
func NewModerationService(repo repositories.ListingRepository, publisher EventPublisher, log *zap.Logger) *ModerationService {
	return &ModerationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Approve publishes a pending listing. It reports whether the status changed.
func (s *ModerationService) Approve(actor models.User, id string) (bool, error) {
	return s.transition(actor, id, models.StatusApproved)
}

// Reject turns down a pending listing. It reports whether the status changed.
func (s *ModerationService) Reject(actor models.User, id string) (bool, error) {
	return s.transition(actor, id, models.StatusRejected)
}

func (s *ModerationService) transition(actor models.User, id string, to models.ListingStatus) (bool, error) {
	if !actor.IsAdmin() {
		return false, fmt.Errorf("actor %s cannot moderate listing %s: %w", actor.ID, id, ErrForbidden)
	}

	changed, err := s.repo.CompareAndSetStatus(id, models.StatusPending, to)
	if err != nil {
		return false, fmt.Errorf("failed to moderate listing %s: %w", id, err)
	}
	if !changed {
		s.log.Debug("moderation skipped, listing missing or not pending",
			zap.String("listing_id", id),
			zap.String("target", string(to)),
		)
		return false, nil
	}

	s.log.Info("listing moderated",
		zap.String("listing_id", id),
		zap.String("status", string(to)),
		zap.String("admin_id", actor.ID),
	)

	eventType := models.EventListingApproved
	if to == models.StatusRejected {
		eventType = models.EventListingRejected
	}
	publishEvent(s.publisher, s.log, eventType, s.snapshot(id, to))
	return true, nil
}

// snapshot looks up the listing for the event payload, falling back to the id alone.
func (s *ModerationService) snapshot(id string, status models.ListingStatus) models.Listing {
	all, err := s.repo.GetAll()
	if err == nil {
		for _, l := range all {
			if l.ID == id {
				return l
			}
		}
	}
	return models.Listing{ID: id, Status: status}
}
