package repositories

import (
	"errors"

	"fastpost/internal/models"
)

// ErrDuplicateListing is returned when a listing id is already stored.
var ErrDuplicateListing = errors.New("listing id already exists")

// ListingRepository defines the interface for listing data access.
type ListingRepository interface {
	// Insert places a listing at the front of the collection.
	Insert(listing *models.Listing) error
	// UpdateStatus overwrites the status of a listing. Unknown ids are ignored.
	UpdateStatus(id string, status models.ListingStatus) error
	// CompareAndSetStatus moves a listing from one status to another and
	// reports whether it did. Unknown ids and mismatched statuses return false.
	CompareAndSetStatus(id string, from, to models.ListingStatus) (bool, error)
	// GetAll returns every listing, newest first.
	GetAll() ([]models.Listing, error)
	// Revision changes on every successful mutation.
	Revision() uint64
}
