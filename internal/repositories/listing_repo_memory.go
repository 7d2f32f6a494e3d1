package repositories

import (
	"fmt"
	"sync"

	"fastpost/internal/models"

	"github.com/google/uuid"
)

// MemoryListingRepository is an in-memory implementation of ListingRepository.
// Listings are kept newest first.
type MemoryListingRepository struct {
	listings []models.Listing
	index    map[string]struct{}
	revision uint64
	mu       sync.RWMutex
}

// NewMemoryListingRepository creates a new instance of MemoryListingRepository.
func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{
		index: make(map[string]struct{}),
	}
}

// Insert prepends a listing.
func (r *MemoryListingRepository) Insert(listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if _, ok := r.index[listing.ID]; ok {
		return fmt.Errorf("insert listing %s: %w", listing.ID, ErrDuplicateListing)
	}
	listing.Position = int64(len(r.listings)) + 1

	r.listings = append(r.listings, models.Listing{})
	copy(r.listings[1:], r.listings)
	r.listings[0] = *listing
	r.index[listing.ID] = struct{}{}
	r.revision++
	return nil
}

// UpdateStatus replaces the status of the listing with the given id.
func (r *MemoryListingRepository) UpdateStatus(id string, status models.ListingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.listings {
		if r.listings[i].ID == id {
			r.listings[i].Status = status
			r.revision++
			return nil
		}
	}
	return nil
}

// CompareAndSetStatus moves a listing from one status to another under the write lock.
func (r *MemoryListingRepository) CompareAndSetStatus(id string, from, to models.ListingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.listings {
		if r.listings[i].ID != id {
			continue
		}
		if r.listings[i].Status != from {
			return false, nil
		}
		r.listings[i].Status = to
		r.revision++
		return true, nil
	}
	return false, nil
}

// GetAll returns a copy of all listings, newest first.
func (r *MemoryListingRepository) GetAll() ([]models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listingList := make([]models.Listing, len(r.listings))
	copy(listingList, r.listings)
	return listingList, nil
}

// Revision returns the mutation counter.
func (r *MemoryListingRepository) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}
