package models

import (
	"fmt"
	"time"
)

// Category is one of the fixed marketplace sections a listing is posted under.
type Category string

const (
	CategoryTravelPackage Category = "travel-package"
	CategoryRestaurant    Category = "restaurant"
	CategoryMarket        Category = "market"
	CategoryClothing      Category = "clothing"
	CategoryElectronics   Category = "electronics"
	CategoryVehicle       Category = "vehicle"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTravelPackage,
	CategoryRestaurant,
	CategoryVehicle,
	CategoryMarket,
	CategoryClothing,
	CategoryElectronics,
}

// ParseCategory converts a wire value into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Currency codes used by listings.
const (
	CurrencyUSD = "USD"
	CurrencyIQD = "IQD"
)

// CurrencyFor returns the currency a listing of the given category is priced in.
func CurrencyFor(c Category) string {
	if c == CategoryVehicle {
		return CurrencyUSD
	}
	return CurrencyIQD
}

// ListingStatus is the moderation state of a listing.
type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

// InitialStatusFor returns the status a new listing starts in.
// Vehicle listings wait for a paid verification before they are published.
func InitialStatusFor(c Category) ListingStatus {
	if c == CategoryVehicle {
		return StatusPending
	}
	return StatusApproved
}

// Listing represents a single marketplace post.
type Listing struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID     string        `json:"owner_id" gorm:"index;type:varchar(64)"`
	Category    Category      `json:"category" gorm:"index;type:varchar(32)"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Currency    string        `json:"currency" gorm:"type:varchar(3)"`
	Images      []string      `json:"images" gorm:"serializer:json"`
	Status      ListingStatus `json:"status" gorm:"index;type:varchar(16)"`
	CreatedAt   time.Time     `json:"created_at"`
	IsVip       bool          `json:"is_vip"`
	Metadata    Details       `json:"metadata" gorm:"serializer:json"`
	Position    int64         `json:"-" gorm:"index"` // insertion order, newest is highest
}

// CreateListingInput is the payload accepted by the create flow.
// Currency and status are never taken from input.
type CreateListingInput struct {
	Title       string   `json:"title" validate:"required,notblank,min=3,max=120"`
	Description string   `json:"description" validate:"required,notblank,max=2000"`
	Category    Category `json:"category" validate:"required,oneof=travel-package restaurant market clothing electronics vehicle"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Images      []string `json:"images" validate:"omitempty,dive,required,max=2048"`
	IsVip       bool     `json:"is_vip"`
	Metadata    *Details `json:"metadata"`
}

// MarketStats is the aggregate the admin dashboard and insights assist work from.
type MarketStats struct {
	TotalListings int     `json:"total_listings"`
	PendingCount  int     `json:"pending_count"`
	RevenueProxy  float64 `json:"revenue_proxy"`
}

// Listing event types published on the listing_events queue.
const (
	EventListingCreated  = "listing.created"
	EventListingApproved = "listing.approved"
	EventListingRejected = "listing.rejected"
)

// ListingEvent describes a change to a listing.
type ListingEvent struct {
	Type       string        `json:"type"`
	ListingID  string        `json:"listing_id"`
	OwnerID    string        `json:"owner_id"`
	Category   Category      `json:"category"`
	Status     ListingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewListingEvent builds an event of the given type from a listing snapshot.
func NewListingEvent(eventType string, l Listing) ListingEvent {
	return ListingEvent{
		Type:       eventType,
		ListingID:  l.ID,
		OwnerID:    l.OwnerID,
		Category:   l.Category,
		Status:     l.Status,
		OccurredAt: time.Now().UTC(),
	}
}
