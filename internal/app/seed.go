package app

import (
	"errors"
	"fmt"
	"time"

	"fastpost/internal/models"
	"fastpost/internal/repositories"
)

// DemoUsers are the actors a session can be started for.
func DemoUsers() []models.User {
	return []models.User{
		{ID: "user_1", Name: "Ahmad Mala", Email: "ahmad@fastpost.iq", Role: models.RoleAdmin, Avatar: "https://picsum.photos/id/64/200"},
		{ID: "user_2", Name: "Standard User", Email: "user@fastpost.iq", Role: models.RoleStandard, Avatar: "https://picsum.photos/id/65/200"},
		{ID: "user_3", Name: "Business User", Email: "business@fastpost.iq", Role: models.RoleBusiness, Avatar: "https://picsum.photos/id/66/200"},
	}
}

// DemoListings returns the demo feed in display order, newest first. Each
// listing is in a state the create flow can reach: currency follows the
// category and only the vehicle p4 still waits for moderation.
func DemoListings(now time.Time) []models.Listing {
	return []models.Listing{
		{
			ID:          "p1",
			OwnerID:     "user_1",
			Category:    models.CategoryVehicle,
			Title:       "BMW M4 Competition 2022",
			Description: "Fresh import, low mileage, full options. Located in Suli.",
			Price:       85000,
			Currency:    models.CurrencyFor(models.CategoryVehicle),
			Images:      []string{"https://picsum.photos/id/111/800/600"},
			Status:      models.StatusApproved,
			CreatedAt:   now,
			IsVip:       true,
			Metadata: models.Details{Vehicle: &models.VehicleDetails{
				Location: "Sulaymaniyah", Mileage: "12k", Fuel: "Petrol", Gearbox: "Auto",
			}},
		},
		{
			ID:          "p2",
			OwnerID:     "user_2",
			Category:    models.CategoryRestaurant,
			Title:       "Traditional Kurdish Quzi",
			Description: "The best slow-cooked lamb in Erbil. Family packs available.",
			Price:       15000,
			Currency:    models.CurrencyFor(models.CategoryRestaurant),
			Images:      []string{"https://picsum.photos/id/488/800/600"},
			Status:      models.StatusApproved,
			CreatedAt:   now.Add(-time.Minute),
			Metadata: models.Details{Restaurant: &models.RestaurantDetails{
				Location: "Erbil", Cuisine: "Kurdish", Delivery: true,
			}},
		},
		{
			ID:          "p3",
			OwnerID:     "user_3",
			Category:    models.CategoryTravelPackage,
			Title:       "VIP Umrah Package - 15 Days",
			Description: "High-end hotels near Haram. 5-star service included.",
			Price:       2500000,
			Currency:    models.CurrencyFor(models.CategoryTravelPackage),
			Images:      []string{"https://picsum.photos/id/352/800/600"},
			Status:      models.StatusApproved,
			CreatedAt:   now.Add(-2 * time.Minute),
			Metadata: models.Details{TravelPackage: &models.TravelPackageDetails{
				Location: "Duhok", Duration: "15 days", Hotels: "Pullman Zamzam",
			}},
		},
		{
			ID:          "p4",
			OwnerID:     "user_3",
			Category:    models.CategoryVehicle,
			Title:       "Toyota Land Cruiser 2020",
			Description: "Family SUV, dealer maintained. Awaiting inspection in Duhok.",
			Price:       42000,
			Currency:    models.CurrencyFor(models.CategoryVehicle),
			Images:      []string{"https://picsum.photos/id/133/800/600"},
			Status:      models.StatusPending,
			CreatedAt:   now.Add(-3 * time.Minute),
			Metadata: models.Details{Vehicle: &models.VehicleDetails{
				Location: "Duhok", Mileage: "64k", Fuel: "Petrol", Gearbox: "Auto",
			}},
		},
	}
}

// Seed stores the demo actors and listings. Listings are inserted oldest
// first so the feed shows them in display order. Records that already
// exist are skipped.
func Seed(users repositories.UserRepository, listings repositories.ListingRepository, now time.Time) error {
	for _, u := range DemoUsers() {
		u := u
		if _, err := users.GetByID(u.ID); err == nil {
			continue
		}
		if err := users.Create(&u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}

	demo := DemoListings(now)
	for i := len(demo) - 1; i >= 0; i-- {
		if err := listings.Insert(&demo[i]); err != nil {
			if errors.Is(err, repositories.ErrDuplicateListing) {
				continue
			}
			return fmt.Errorf("failed to seed listing %s: %w", demo[i].ID, err)
		}
	}
	return nil
}
