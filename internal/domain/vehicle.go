package domain

import (
	"fmt"
	"time"
)

type LocationType string

const (
	LocationInCity    LocationType = "in_city"
	LocationOutOfCity LocationType = "out_of_city"
)

func (l LocationType) Valid() bool {
	return l == LocationInCity || l == LocationOutOfCity
}

// RateMatrix holds the daily rates, in minor currency units, for each
// location/driver combination.
type RateMatrix struct {
	InCityWithoutDriverCents    int64 `json:"in_city_without_driver_cents"`
	InCityWithDriverCents       int64 `json:"in_city_with_driver_cents"`
	OutOfCityWithoutDriverCents int64 `json:"out_of_city_without_driver_cents"`
	OutOfCityWithDriverCents    int64 `json:"out_of_city_with_driver_cents"`
}

// Rate selects the daily rate cell for the given context.
func (m RateMatrix) Rate(location LocationType, withDriver bool) (int64, error) {
	switch location {
	case LocationInCity:
		if withDriver {
			return m.InCityWithDriverCents, nil
		}
		return m.InCityWithoutDriverCents, nil
	case LocationOutOfCity:
		if withDriver {
			return m.OutOfCityWithDriverCents, nil
		}
		return m.OutOfCityWithoutDriverCents, nil
	default:
		return 0, NewValidationError("location", fmt.Sprintf("unknown location type %q", location))
	}
}

func (m RateMatrix) Validate() error {
	if m.InCityWithoutDriverCents < 0 || m.InCityWithDriverCents < 0 ||
		m.OutOfCityWithoutDriverCents < 0 || m.OutOfCityWithDriverCents < 0 {
		return NewValidationError("rates", "daily rates cannot be negative")
	}
	return nil
}

type Vehicle struct {
	ID    string `json:"id"`
	Plate string `json:"plate"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int32  `json:"year"`

	Rates            RateMatrix `json:"rates"`
	DeliveryFeeCents int64      `json:"delivery_fee_cents"` // 0 when delivery is not offered
	PickupFeeCents   int64      `json:"pickup_fee_cents"`   // 0 when pickup is not offered

	// Distance policy; either value at 0 disables excess-distance billing.
	DailyAllowanceKm      int64 `json:"daily_allowance_km"`
	ExcessPricePerKmCents int64 `json:"excess_price_per_km_cents"`

	// Maintained by the reservation lifecycle only.
	Available bool `json:"available"`

	CreatedBy ActorID   `json:"created_by"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// HasDistancePolicy reports whether returns are billed for excess distance.
func (v *Vehicle) HasDistancePolicy() bool {
	return v.DailyAllowanceKm > 0 && v.ExcessPricePerKmCents > 0
}

func (v *Vehicle) Validate() error {
	if v.Plate == "" {
		return NewValidationError("plate", "plate is required")
	}
	if err := v.Rates.Validate(); err != nil {
		return err
	}
	if v.DeliveryFeeCents < 0 || v.PickupFeeCents < 0 {
		return NewValidationError("fees", "delivery and pickup fees cannot be negative")
	}
	if v.DailyAllowanceKm < 0 || v.ExcessPricePerKmCents < 0 {
		return NewValidationError("distance_policy", "distance allowance and excess price cannot be negative")
	}
	return nil
}
