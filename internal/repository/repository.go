package repository

import (
	"context"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

// Lookups by id return an error matching domain.ErrNotFound when the row is
// missing. Find* methods return nil, nil instead.

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	// Update writes descriptive fields and rates. The availability flag is not touched.
	Update(ctx context.Context, v *domain.Vehicle) error
	List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	// RefreshAvailability recomputes the flag from the vehicle's open checkouts,
	// reading and writing in one step so a checkout committed meanwhile is seen.
	// It returns the resulting flag and whether it changed.
	RefreshAvailability(ctx context.Context, id string) (available, changed bool, err error)
}

type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	Search(ctx context.Context, query string, page, pageSize int32) ([]domain.Customer, int32, error)
}

type ReservationRepository interface {
	// Create inserts r. Implementations re-check overlaps for r.VehicleID at write
	// time and fail with a *domain.ConflictError when another session won the range.
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	// Update rewrites dates, options and total with the same write-time re-check,
	// excluding r itself. Only rows still in one of the from statuses are updated.
	Update(ctx context.Context, r *domain.Reservation, from ...domain.ReservationStatus) error
	// Transition stores r.Status and r.DepositPaid if the row is still in one of the
	// from statuses; otherwise the write is rejected with a *domain.PreconditionError.
	Transition(ctx context.Context, r *domain.Reservation, from ...domain.ReservationStatus) error
	// ListActiveByVehicle returns the non-cancelled reservations of a vehicle, the
	// overlap detector input.
	ListActiveByVehicle(ctx context.Context, vehicleID string) ([]domain.Reservation, error)
	ListByVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error)
	// ListOutEndingBy returns reservations whose vehicle is out (checkout, no
	// checkin) and whose end date is on or before day.
	ListOutEndingBy(ctx context.Context, day calendar.Date) ([]domain.Reservation, error)
	// ListCheckedInNotCompleted finds reservations with a checkin whose status
	// write was lost.
	ListCheckedInNotCompleted(ctx context.Context) ([]domain.Reservation, error)
}

type HandoverRepository interface {
	// CreateCheckout fails with a conflict when a checkout already exists for the
	// reservation or the vehicle is not available at write time.
	CreateCheckout(ctx context.Context, c *domain.Checkout) error
	FindCheckout(ctx context.Context, reservationID string) (*domain.Checkout, error)
	// CreateCheckin fails with a conflict when a checkin already exists and with a
	// precondition error when no checkout exists.
	CreateCheckin(ctx context.Context, c *domain.Checkin) error
	FindCheckin(ctx context.Context, reservationID string) (*domain.Checkin, error)
	// ListOpenCheckouts returns checkouts that have no checkin yet.
	ListOpenCheckouts(ctx context.Context) ([]domain.Checkout, error)
}
