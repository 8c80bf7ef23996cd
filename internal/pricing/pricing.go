package pricing

import (
	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

// Options are the booking choices that drive the price.
type Options struct {
	Start           calendar.Date
	End             calendar.Date
	Location        domain.LocationType
	WithDriver      bool
	IncludeDelivery bool
	IncludePickup   bool
}

// OptionsFor extracts the pricing options of a reservation.
func OptionsFor(r *domain.Reservation) Options {
	return Options{
		Start:           r.StartDate,
		End:             r.EndDate,
		Location:        r.Location,
		WithDriver:      r.WithDriver,
		IncludeDelivery: r.IncludeDelivery,
		IncludePickup:   r.IncludePickup,
	}
}

// Breakdown provides a detailed cost breakdown
type Breakdown struct {
	Days             int   `json:"days"`
	DailyRateCents   int64 `json:"daily_rate_cents"`
	BaseCents        int64 `json:"base_cents"`
	DeliveryFeeCents int64 `json:"delivery_fee_cents"`
	PickupFeeCents   int64 `json:"pickup_fee_cents"`
	TotalCents       int64 `json:"total_cents"`
}

// Quote prices a booking of vehicle v. Every call recomputes from the given
// options alone, so unselected fees always contribute zero.
func Quote(v *domain.Vehicle, opts Options) (Breakdown, error) {
	if err := domain.ValidateRange(opts.Start, opts.End); err != nil {
		return Breakdown{}, err
	}
	days := calendar.InclusiveDays(opts.Start, opts.End)
	if days <= 0 {
		return Breakdown{}, domain.NewValidationError("end_date", "rental must last at least one day")
	}

	rate, err := v.Rates.Rate(opts.Location, opts.WithDriver)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Days:           days,
		DailyRateCents: rate,
		BaseCents:      rate * int64(days),
	}
	if opts.IncludeDelivery {
		b.DeliveryFeeCents = v.DeliveryFeeCents
	}
	if opts.IncludePickup {
		b.PickupFeeCents = v.PickupFeeCents
	}
	b.TotalCents = b.BaseCents + b.DeliveryFeeCents + b.PickupFeeCents
	return b, nil
}

// ComputeTotal returns only the total of Quote.
func ComputeTotal(v *domain.Vehicle, opts Options) (int64, error) {
	b, err := Quote(v, opts)
	if err != nil {
		return 0, err
	}
	return b.TotalCents, nil
}
