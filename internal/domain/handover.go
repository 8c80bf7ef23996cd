package domain

import "time"

// Checkout is the handover of the vehicle to the customer.
type Checkout struct {
	ID              string    `json:"id"`
	ReservationID   string    `json:"reservation_id"`
	VehicleID       string    `json:"vehicle_id"`
	DepartureAt     time.Time `json:"departure_at"`
	StartOdometerKm int64     `json:"start_odometer_km"`
	DeliveredTo     string    `json:"delivered_to"`
	Notes           string    `json:"notes"`
	CreatedBy       ActorID   `json:"created_by"`
	CreatedOn       time.Time `json:"created_on"`
}

// Checkin is the return of the vehicle. Fines and ExtraFees hold the operator's
// amounts plus whatever the reconciliation merged into them.
type Checkin struct {
	ID                   string    `json:"id"`
	ReservationID        string    `json:"reservation_id"`
	VehicleID            string    `json:"vehicle_id"`
	ReturnedAt           time.Time `json:"returned_at"`
	EndOdometerKm        int64     `json:"end_odometer_km"`
	ReceivedBy           string    `json:"received_by"`
	DepositReturned      bool      `json:"deposit_returned"`
	DepositReturnedCents int64     `json:"deposit_returned_cents"`
	FinesCents           int64     `json:"fines_cents"`
	ExtraFeesCents       int64     `json:"extra_fees_cents"`
	Notes                string    `json:"notes"`

	ExtraDays           int32 `json:"extra_days"`
	ExtraDaysFeeCents   int64 `json:"extra_days_fee_cents"`
	ExcessDistanceKm    int64 `json:"excess_distance_km"`
	ExcessDistanceCents int64 `json:"excess_distance_cents"`

	CreatedBy ActorID   `json:"created_by"`
	CreatedOn time.Time `json:"created_on"`
}
