package domain

import (
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
)

// ActorID identifies whoever performs an operation; it is only stamped on records.
type ActorID string

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Cancellable reports whether the status still allows cancellation.
func (s ReservationStatus) Cancellable() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

type Reservation struct {
	ID         string        `json:"id"`
	VehicleID  string        `json:"vehicle_id"`
	CustomerID string        `json:"customer_id"`
	StartDate  calendar.Date `json:"start_date"`
	EndDate    calendar.Date `json:"end_date"`

	Location        LocationType `json:"location"`
	WithDriver      bool         `json:"with_driver"`
	IncludeDelivery bool         `json:"include_delivery"`
	IncludePickup   bool         `json:"include_pickup"`

	// Estimate computed at booking time; the checkin carries the final reconciliation.
	TotalCents  int64             `json:"total_cents"`
	Status      ReservationStatus `json:"status"`
	DepositPaid bool              `json:"deposit_paid"`
	Notes       string            `json:"notes"`

	CreatedBy ActorID   `json:"created_by"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// ValidateRange checks the inclusive booking window.
func ValidateRange(start, end calendar.Date) error {
	if start.IsZero() {
		return NewValidationError("start_date", "start date is required")
	}
	if end.IsZero() {
		return NewValidationError("end_date", "end date is required")
	}
	if end.Before(start) {
		return NewValidationError("end_date", "end date must be on or after start date")
	}
	return nil
}

func (r *Reservation) Validate() error {
	if r.VehicleID == "" {
		return NewValidationError("vehicle_id", "vehicle is required")
	}
	if r.CustomerID == "" {
		return NewValidationError("customer_id", "customer is required")
	}
	if !r.Location.Valid() {
		return NewValidationError("location", "location must be in_city or out_of_city")
	}
	return ValidateRange(r.StartDate, r.EndDate)
}
