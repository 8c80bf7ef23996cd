// Package lifecycle models the handover lifecycle of a reservation as a closed
// set of states: Booked, Out, Completed and Cancelled.
package lifecycle

import (
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

const (
	opCheckout = "checkout"
	opCheckin  = "checkin"
	opCancel   = "cancel"
	opUpdate   = "update"
	opConfirm  = "confirm"
)

// State is implemented only by the types in this package.
type State interface {
	Name() string
	isState()
}

// Booked: no checkout yet, the vehicle is awaiting handover.
type Booked struct{}

// Out: the vehicle was handed over and has not come back.
type Out struct {
	Checkout domain.Checkout
}

// Completed: handed over and returned.
type Completed struct {
	Checkout domain.Checkout
	Checkin  domain.Checkin
}

// Cancelled before handover.
type Cancelled struct{}

func (Booked) Name() string    { return "awaiting handover" }
func (Out) Name() string       { return "vehicle out" }
func (Completed) Name() string { return "completed" }
func (Cancelled) Name() string { return "cancelled" }

func (Booked) isState()    {}
func (Out) isState()       {}
func (Completed) isState() {}
func (Cancelled) isState() {}

// Derive builds the state from the stored records. A checkin without a checkout
// cannot be represented and is reported as an error.
func Derive(r *domain.Reservation, checkout *domain.Checkout, checkin *domain.Checkin) (State, error) {
	switch {
	case checkin != nil && checkout == nil:
		return nil, domain.NewPreconditionError("load", "inconsistent", "checkin recorded without a checkout for reservation "+r.ID)
	case checkin != nil:
		return Completed{Checkout: *checkout, Checkin: *checkin}, nil
	case checkout != nil:
		return Out{Checkout: *checkout}, nil
	case r.Status == domain.ReservationStatusCancelled:
		return Cancelled{}, nil
	default:
		return Booked{}, nil
	}
}

// CanCheckout allows a handover only from Booked.
func CanCheckout(s State) error {
	switch s.(type) {
	case Booked:
		return nil
	case Out, Completed:
		return domain.NewPreconditionError(opCheckout, s.Name(), "a checkout is already recorded for this reservation")
	default:
		return domain.NewPreconditionError(opCheckout, s.Name(), "reservation is cancelled")
	}
}

// CanCheckin allows a return only from Out and hands back the checkout it closes.
func CanCheckin(s State) (Out, error) {
	switch st := s.(type) {
	case Out:
		return st, nil
	case Booked:
		return Out{}, domain.NewPreconditionError(opCheckin, s.Name(), "no checkout recorded for this reservation")
	case Completed:
		return Out{}, domain.NewPreconditionError(opCheckin, s.Name(), "a checkin is already recorded for this reservation")
	default:
		return Out{}, domain.NewPreconditionError(opCheckin, s.Name(), "reservation is cancelled")
	}
}

// CanCancel allows cancellation while Booked with a pending or confirmed status.
func CanCancel(status domain.ReservationStatus, s State) error {
	return preHandover(opCancel, status, s)
}

// CanUpdate guards edits of dates and options; same window as cancellation.
func CanUpdate(status domain.ReservationStatus, s State) error {
	return preHandover(opUpdate, status, s)
}

// CanConfirm allows pending → confirmed before handover.
func CanConfirm(status domain.ReservationStatus, s State) error {
	if _, ok := s.(Booked); !ok {
		return domain.NewPreconditionError(opConfirm, s.Name(), "reservation is no longer awaiting handover")
	}
	if status != domain.ReservationStatusPending {
		return domain.NewPreconditionError(opConfirm, string(status), "only pending reservations can be confirmed")
	}
	return nil
}

func preHandover(op string, status domain.ReservationStatus, s State) error {
	if _, ok := s.(Booked); !ok {
		return domain.NewPreconditionError(op, s.Name(), "vehicle was already handed over or the reservation is closed")
	}
	if !status.Cancellable() {
		return domain.NewPreconditionError(op, string(status), "only pending or confirmed reservations qualify")
	}
	return nil
}

// VehicleAvailable is the availability flag implied by a state.
func VehicleAvailable(s State) bool {
	_, out := s.(Out)
	return !out
}
