package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fastpost/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Draft is the in-progress state of an actor's create form.
type Draft struct {
	Title       string          `json:"title"`
	Category    models.Category `json:"category"`
	Price       *float64        `json:"price"`
	Description string          `json:"description"`
	IsVip       bool            `json:"is_vip"`
	Revision    uint64          `json:"revision"`
	Generating  bool            `json:"generating"`
}

// DraftInput updates the fields that are set and leaves the others alone.
type DraftInput struct {
	Title       *string          `json:"title" validate:"omitempty,max=120"`
	Category    *models.Category `json:"category" validate:"omitempty,oneof=travel-package restaurant market clothing electronics vehicle"`
	Price       *float64         `json:"price" validate:"omitempty,gte=0"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	IsVip       *bool            `json:"is_vip"`
}

func newDraft(revision uint64) *Draft {
	return &Draft{Category: models.CategoryMarket, Revision: revision}
}

// DraftService keeps one create-form draft per actor and applies generated
// descriptions only when the draft has not changed while the request was in flight.
type DraftService struct {
	mu         sync.Mutex
	drafts     map[string]*Draft
	generating map[string]bool
	assist     *AssistService
	listings   *ListingService
	validate   *validator.Validate
	log        *zap.Logger
}

// NewDraftService creates a new DraftService.
func NewDraftService(assist *AssistService, listings *ListingService, log *zap.Logger) *DraftService {
	return &DraftService{
		drafts:     make(map[string]*Draft),
		generating: make(map[string]bool),
		assist:     assist,
		listings:   listings,
		validate:   newValidator(),
		log:        log,
	}
}

// draftLocked returns the actor's draft, creating it if needed. Callers hold s.mu.
func (s *DraftService) draftLocked(actorID string) *Draft {
	d, ok := s.drafts[actorID]
	if !ok {
		d = newDraft(0)
		s.drafts[actorID] = d
	}
	return d
}

// view copies the draft for callers. Callers hold s.mu.
func (s *DraftService) view(actorID string, d *Draft) Draft {
	out := *d
	if d.Price != nil {
		p := *d.Price
		out.Price = &p
	}
	out.Generating = s.generating[actorID]
	return out
}

// Get returns the actor's current draft.
func (s *DraftService) Get(actorID string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(actorID, s.draftLocked(actorID))
}

// Update applies the set fields of in and bumps the draft revision.
func (s *DraftService) Update(actorID string, in DraftInput) (Draft, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return Draft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draftLocked(actorID)
	if in.Title != nil {
		d.Title = *in.Title
	}
	if in.Category != nil {
		d.Category = *in.Category
	}
	if in.Price != nil {
		p := *in.Price
		d.Price = &p
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.IsVip != nil {
		d.IsVip = *in.IsVip
	}
	d.Revision++
	return s.view(actorID, d), nil
}

// Invalidate marks the draft context as changed so an in-flight description is discarded.
func (s *DraftService) Invalidate(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drafts[actorID]; ok {
		d.Revision++
	}
}

// GenerateDescription fills the description from the assist backend. The
// boolean result reports whether the text was applied; it is false when the
// draft changed during the call. Only the requesting actor's draft reports
// Generating while the call is in flight.
func (s *DraftService) GenerateDescription(ctx context.Context, actorID string) (Draft, bool, error) {
	s.mu.Lock()
	d := s.draftLocked(actorID)
	title, category, revision := d.Title, d.Category, d.Revision
	if strings.TrimSpace(title) == "" {
		snapshot := s.view(actorID, d)
		s.mu.Unlock()
		return snapshot, false, ErrTitleRequired
	}
	if s.generating[actorID] {
		snapshot := s.view(actorID, d)
		s.mu.Unlock()
		return snapshot, false, ErrAssistBusy
	}
	s.generating[actorID] = true
	s.mu.Unlock()

	text, err := s.assist.Describe(ctx, DescribeRequest{Category: category, Title: title, Specs: map[string]string{}})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.generating, actorID)

	d = s.draftLocked(actorID)
	if err != nil {
		return s.view(actorID, d), false, err
	}
	if d.Revision != revision {
		s.log.Info("discarding late description, draft changed",
			zap.String("actor_id", actorID),
			zap.Uint64("requested_revision", revision),
			zap.Uint64("current_revision", d.Revision),
		)
		return s.view(actorID, d), false, nil
	}
	d.Description = text
	d.Revision++
	return s.view(actorID, d), true, nil
}

// Submit creates a listing from the draft and resets it.
func (s *DraftService) Submit(actor models.User) (*models.Listing, error) {
	s.mu.Lock()
	d := s.draftLocked(actor.ID)
	input := models.CreateListingInput{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		IsVip:       d.IsVip,
	}
	if d.Price != nil {
		p := *d.Price
		input.Price = &p
	}
	revision := d.Revision
	s.mu.Unlock()

	listing, err := s.listings.CreateListing(actor, input)
	if err != nil {
		return nil, fmt.Errorf("failed to submit draft: %w", err)
	}

	s.mu.Lock()
	s.drafts[actor.ID] = newDraft(revision + 1)
	s.mu.Unlock()
	return listing, nil
}
