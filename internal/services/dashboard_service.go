package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fastpost/internal/models"

	"go.uber.org/zap"
)

// DashboardView is everything the admin dashboard shows.
type DashboardView struct {
	Stats           models.MarketStats `json:"stats"`
	Pending         []models.Listing   `json:"pending"`
	ActionRequired  int                `json:"action_required"`
	Insights        []string           `json:"insights"`
	InsightsLoading bool               `json:"insights_loading"`
}

// DashboardService assembles the admin dashboard. Insights are cached per
// total listing count and refetched when the count changes.
type DashboardService struct {
	listings *ListingService
	assist   *AssistService
	log      *zap.Logger

	mu          sync.Mutex
	insightsKey int
	insights    []string
	hasInsights bool
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(listings *ListingService, assist *AssistService, log *zap.Logger) *DashboardService {
	return &DashboardService{
		listings: listings,
		assist:   assist,
		log:      log,
	}
}

// Dashboard returns the dashboard for an admin actor.
func (s *DashboardService) Dashboard(ctx context.Context, actor models.User) (*DashboardView, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("actor %s cannot open the dashboard: %w", actor.ID, ErrForbidden)
	}

	stats, err := s.listings.Stats()
	if err != nil {
		return nil, err
	}
	pending, err := s.listings.Pending()
	if err != nil {
		return nil, err
	}

	view := &DashboardView{
		Stats:          stats,
		Pending:        pending,
		ActionRequired: len(pending),
	}
	view.Insights, view.InsightsLoading = s.insightsFor(ctx, stats)
	return view, nil
}

func (s *DashboardService) insightsFor(ctx context.Context, stats models.MarketStats) ([]string, bool) {
	s.mu.Lock()
	cached := cloneStrings(s.insights)
	if s.hasInsights && s.insightsKey == stats.TotalListings {
		s.mu.Unlock()
		return cached, false
	}
	s.mu.Unlock()

	insights, err := s.assist.MarketInsights(ctx, stats)
	if errors.Is(err, ErrAssistBusy) {
		return cached, true
	}
	if err != nil {
		// MarketInsights only fails on the busy gate; anything else is unexpected.
		s.log.Error("insights request failed", zap.Error(err))
		return FallbackInsights(), false
	}

	current, err := s.listings.Stats()
	if err != nil || current.TotalListings != stats.TotalListings {
		s.log.Debug("listing count changed during insights request, not caching",
			zap.Int("requested_total", stats.TotalListings),
		)
		return insights, false
	}

	s.mu.Lock()
	s.insightsKey = stats.TotalListings
	s.insights = cloneStrings(insights)
	s.hasInsights = true
	s.mu.Unlock()
	return insights, false
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
