package services

import (
	"strings"
	"sync"

	"fastpost/internal/models"
	"fastpost/internal/repositories"
)

// Visible returns the listings matching query and category, in their original order.
// An empty query matches everything; a nil category matches every category.
func Visible(listings []models.Listing, query string, category *models.Category) []models.Listing {
	q := strings.ToLower(query)
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if category != nil && l.Category != *category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.Description), q) {
			continue
		}
		out = append(out, l)
	}
	return out
}

type feedKey struct {
	revision    uint64
	query       string
	category    models.Category
	hasCategory bool
}

// Feed memoizes the last Visible result for a store revision, query and category.
type Feed struct {
	mu     sync.Mutex
	key    feedKey
	valid  bool
	result []models.Listing
}

// Visible recomputes the visible listings when any input changed since the last call.
func (f *Feed) Visible(repo repositories.ListingRepository, query string, category *models.Category) ([]models.Listing, error) {
	key := feedKey{revision: repo.Revision(), query: query}
	if category != nil {
		key.category = *category
		key.hasCategory = true
	}

	f.mu.Lock()
	if f.valid && f.key == key {
		out := cloneListings(f.result)
		f.mu.Unlock()
		return out, nil
	}
	f.mu.Unlock()

	all, err := repo.GetAll()
	if err != nil {
		return nil, err
	}
	result := Visible(all, query, category)

	f.mu.Lock()
	f.key = key
	f.valid = true
	f.result = result
	f.mu.Unlock()

	return cloneListings(result), nil
}

func cloneListings(in []models.Listing) []models.Listing {
	out := make([]models.Listing, len(in))
	copy(out, in)
	return out
}
