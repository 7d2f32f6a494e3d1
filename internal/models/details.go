package models

import (
	"errors"
	"fmt"
)

// DefaultLocation is stored when the create flow supplies no details.
const DefaultLocation = "Local"

// VehicleDetails carries the attributes shown on car listings.
type VehicleDetails struct {
	Location string `json:"location" validate:"max=80"`
	Mileage  string `json:"mileage" validate:"max=40"`
	Fuel     string `json:"fuel" validate:"max=40"`
	Gearbox  string `json:"gearbox" validate:"max=40"`
}

type RestaurantDetails struct {
	Location string `json:"location" validate:"max=80"`
	Cuisine  string `json:"cuisine" validate:"max=60"`
	Delivery bool   `json:"delivery"`
}

type TravelPackageDetails struct {
	Location string `json:"location" validate:"max=80"`
	Duration string `json:"duration" validate:"max=40"`
	Hotels   string `json:"hotels" validate:"max=200"`
}

type MarketDetails struct {
	Location string `json:"location" validate:"max=80"`
}

type ClothingDetails struct {
	Location string `json:"location" validate:"max=80"`
	Size     string `json:"size" validate:"max=20"`
}

type ElectronicsDetails struct {
	Location  string `json:"location" validate:"max=80"`
	Condition string `json:"condition" validate:"omitempty,oneof=new used refurbished"`
}

// Details is a tagged union of category-specific attributes.
// Exactly one variant is set and it must match the listing category.
type Details struct {
	Vehicle       *VehicleDetails       `json:"vehicle,omitempty"`
	Restaurant    *RestaurantDetails    `json:"restaurant,omitempty"`
	TravelPackage *TravelPackageDetails `json:"travel_package,omitempty"`
	Market        *MarketDetails        `json:"market,omitempty"`
	Clothing      *ClothingDetails      `json:"clothing,omitempty"`
	Electronics   *ElectronicsDetails   `json:"electronics,omitempty"`
}

var (
	ErrDetailsEmpty     = errors.New("details carry no variant")
	ErrDetailsAmbiguous = errors.New("details carry more than one variant")
)

// Kind returns the category of the variant that is set.
func (d Details) Kind() (Category, error) {
	var kinds []Category
	if d.Vehicle != nil {
		kinds = append(kinds, CategoryVehicle)
	}
	if d.Restaurant != nil {
		kinds = append(kinds, CategoryRestaurant)
	}
	if d.TravelPackage != nil {
		kinds = append(kinds, CategoryTravelPackage)
	}
	if d.Market != nil {
		kinds = append(kinds, CategoryMarket)
	}
	if d.Clothing != nil {
		kinds = append(kinds, CategoryClothing)
	}
	if d.Electronics != nil {
		kinds = append(kinds, CategoryElectronics)
	}
	switch len(kinds) {
	case 0:
		return "", ErrDetailsEmpty
	case 1:
		return kinds[0], nil
	default:
		return "", ErrDetailsAmbiguous
	}
}

// MatchCategory checks that d is a well-formed variant for c.
func (d Details) MatchCategory(c Category) error {
	kind, err := d.Kind()
	if err != nil {
		return err
	}
	if kind != c {
		return fmt.Errorf("details for %s do not match category %s", kind, c)
	}
	return nil
}

// Location returns the location of whichever variant is set.
func (d Details) Location() string {
	switch {
	case d.Vehicle != nil:
		return d.Vehicle.Location
	case d.Restaurant != nil:
		return d.Restaurant.Location
	case d.TravelPackage != nil:
		return d.TravelPackage.Location
	case d.Market != nil:
		return d.Market.Location
	case d.Clothing != nil:
		return d.Clothing.Location
	case d.Electronics != nil:
		return d.Electronics.Location
	}
	return ""
}

// DefaultDetails returns the variant for c with only the default location filled in.
func DefaultDetails(c Category) Details {
	switch c {
	case CategoryVehicle:
		return Details{Vehicle: &VehicleDetails{Location: DefaultLocation}}
	case CategoryRestaurant:
		return Details{Restaurant: &RestaurantDetails{Location: DefaultLocation}}
	case CategoryTravelPackage:
		return Details{TravelPackage: &TravelPackageDetails{Location: DefaultLocation}}
	case CategoryClothing:
		return Details{Clothing: &ClothingDetails{Location: DefaultLocation}}
	case CategoryElectronics:
		return Details{Electronics: &ElectronicsDetails{Location: DefaultLocation}}
	default:
		return Details{Market: &MarketDetails{Location: DefaultLocation}}
	}
}
