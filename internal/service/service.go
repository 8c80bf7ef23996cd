package service

import (
	"context"
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/availability"
	"github.com/joelcalolo/MoFleet-sub000/internal/billing"
	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/pricing"
)

// BookingRequest carries the editable part of a reservation.
type BookingRequest struct {
	VehicleID       string
	CustomerID      string
	Start           calendar.Date
	End             calendar.Date
	Location        domain.LocationType
	WithDriver      bool
	IncludeDelivery bool
	IncludePickup   bool
	Notes           string
}

// QuoteRequest is a BookingRequest checked against the calendar of the vehicle.
// ExcludeReservationID lets an edit be priced without clashing with itself.
type QuoteRequest struct {
	BookingRequest
	ExcludeReservationID string
}

type Quote struct {
	Breakdown   pricing.Breakdown
	Overlaps    bool
	Conflicting *domain.Reservation
}

type CheckoutRequest struct {
	ReservationID   string
	DepartureAt     time.Time
	StartOdometerKm int64
	DeliveredTo     string
	Notes           string
}

type CheckinRequest struct {
	ReservationID        string
	ReturnedAt           time.Time
	EndOdometerKm        int64
	ReceivedBy           string
	DepositReturned      bool
	DepositReturnedCents int64
	FinesCents           int64
	ExtraFeesCents       int64
	Notes                string
}

type CheckinResult struct {
	Checkin        *domain.Checkin
	Reconciliation billing.Result
}

// ReservationDetail is a reservation with its handover records and derived state.
type ReservationDetail struct {
	Reservation *domain.Reservation
	Checkout    *domain.Checkout
	Checkin     *domain.Checkin
	State       string
}

type ReservationService interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	CheckAvailability(ctx context.Context, c availability.Candidate) (availability.Result, error)
	CreateReservation(ctx context.Context, actor domain.ActorID, req BookingRequest) (*domain.Reservation, error)
	UpdateReservation(ctx context.Context, actor domain.ActorID, id string, req BookingRequest) (*domain.Reservation, error)
	ConfirmReservation(ctx context.Context, actor domain.ActorID, id string, depositPaid bool) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, actor domain.ActorID, id string) (*domain.Reservation, error)
	Checkout(ctx context.Context, actor domain.ActorID, req CheckoutRequest) (*domain.Checkout, error)
	Checkin(ctx context.Context, actor domain.ActorID, req CheckinRequest) (*CheckinResult, error)
	GetReservation(ctx context.Context, id string) (*ReservationDetail, error)
	ListVehicleReservations(ctx context.Context, vehicleID string, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error)
}

type VehicleService interface {
	CreateVehicle(ctx context.Context, actor domain.ActorID, v *domain.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error)
	UpdateVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error)
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, actor domain.ActorID, c *domain.Customer) error
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	SearchCustomers(ctx context.Context, query string, page, pageSize int32) ([]domain.Customer, int32, error)
}

// Notifier sends customer-facing messages. Failures never undo the operation
// that triggered them.
type Notifier interface {
	SendReturnReceipt(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, checkin *domain.Checkin) error
	SendOverdueReminder(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, expectedReturn time.Time) error
}
