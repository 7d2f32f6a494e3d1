package repositories

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"fastpost/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db       *gorm.DB
	insertMu sync.Mutex // serializes position assignment
	revision atomic.Uint64
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{
		db: db,
	}
}

// Insert creates a listing positioned after every existing one.
func (r *GORMListingRepository) Insert(listing *models.Listing) error {
	r.insertMu.Lock()
	defer r.insertMu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}

	var existing int64
	if err := r.db.Model(&models.Listing{}).Where("id = ?", listing.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check listing %s: %w", listing.ID, err)
	}
	if existing > 0 {
		return fmt.Errorf("insert listing %s: %w", listing.ID, ErrDuplicateListing)
	}

	var maxPosition int64
	if err := r.db.Model(&models.Listing{}).Select("COALESCE(MAX(position), 0)").Scan(&maxPosition).Error; err != nil {
		return fmt.Errorf("failed to read listing position: %w", err)
	}
	listing.Position = maxPosition + 1

	if err := r.db.Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	r.revision.Add(1)
	return nil
}

// UpdateStatus overwrites the status column. Missing rows are not an error.
func (r *GORMListingRepository) UpdateStatus(id string, status models.ListingStatus) error {
	res := r.db.Model(&models.Listing{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update listing status: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		r.revision.Add(1)
	}
	return nil
}

// CompareAndSetStatus issues a conditional update so the check and the write are one statement.
func (r *GORMListingRepository) CompareAndSetStatus(id string, from, to models.ListingStatus) (bool, error) {
	res := r.db.Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition listing %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.revision.Add(1)
	return true, nil
}

// GetAll retrieves all listings from the database, newest first.
func (r *GORMListingRepository) GetAll() ([]models.Listing, error) {
	var listings []models.Listing
	if err := r.db.Order("position DESC").Find(&listings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Listing{}, nil
		}
		return nil, fmt.Errorf("failed to get all listings: %w", err)
	}
	return listings, nil
}

// Revision returns the mutation counter.
func (r *GORMListingRepository) Revision() uint64 {
	return r.revision.Load()
}
