// Package billing reconciles a returned rental against its booking: late
// return days and distance beyond the vehicle's allowance.
package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

// Input carries everything Reconcile reads. Nothing here is mutated.
type Input struct {
	Reservation   *domain.Reservation
	Vehicle       *domain.Vehicle
	Checkout      *domain.Checkout
	ReturnedAt    time.Time
	EndOdometerKm int64
}

// Result holds the reconciliation figures. Notes holds one audit line per
// non-zero component.
type Result struct {
	ExpectedDays       int       `json:"expected_days"`
	ActualDays         int       `json:"actual_days"`
	ExpectedReturnAt   time.Time `json:"expected_return_at"`
	DailyRateCents     int64     `json:"daily_rate_cents"`
	ExtraDays          int       `json:"extra_days"`
	ExtraDaysFeeCents  int64     `json:"extra_days_fee_cents"`
	DistanceKm         int64     `json:"distance_km"`
	AllowanceKm        int64     `json:"allowance_km"`
	ExcessDistanceKm   int64     `json:"excess_distance_km"`
	ExcessDistanceCost int64     `json:"excess_distance_cents"`
	Notes              []string  `json:"notes,omitempty"`
}

// HasCharges reports whether any penalty applies.
func (r Result) HasCharges() bool {
	return r.ExtraDaysFeeCents > 0 || r.ExcessDistanceCost > 0
}

// ExpectedDays is the calendar span of the booking window, at least one day so
// that same-day rentals still expect a return 24 hours after departure. It
// differs from the raw span only for same-day bookings, where the span is 0.
func ExpectedDays(r *domain.Reservation) int {
	days := calendar.SpanDays(r.StartDate, r.EndDate)
	if days < 1 {
		return 1
	}
	return days
}

// Reconcile compares the actual return with the booking.
func Reconcile(in Input) (Result, error) {
	if in.Reservation == nil || in.Vehicle == nil || in.Checkout == nil {
		return Result{}, domain.NewValidationError("", "reservation, vehicle and checkout are required")
	}
	if in.ReturnedAt.IsZero() {
		return Result{}, domain.NewValidationError("returned_at", "return time is required")
	}
	if in.EndOdometerKm < in.Checkout.StartOdometerKm {
		return Result{}, domain.NewValidationError("end_odometer_km",
			fmt.Sprintf("end odometer %d km is below the start odometer %d km", in.EndOdometerKm, in.Checkout.StartOdometerKm))
	}
	if in.ReturnedAt.Before(in.Checkout.DepartureAt) {
		return Result{}, domain.NewValidationError("returned_at", "return time is before the departure time")
	}

	rate, err := in.Vehicle.Rates.Rate(in.Reservation.Location, in.Reservation.WithDriver)
	if err != nil {
		return Result{}, err
	}

	expected := ExpectedDays(in.Reservation)
	actual := calendar.ElapsedDays(in.Checkout.DepartureAt, in.ReturnedAt)
	if actual < expected {
		actual = expected
	}

	res := Result{
		ExpectedDays:     expected,
		ActualDays:       actual,
		ExpectedReturnAt: calendar.AddCivilDays(in.Checkout.DepartureAt, expected),
		DailyRateCents:   rate,
		DistanceKm:       in.EndOdometerKm - in.Checkout.StartOdometerKm,
	}

	if in.ReturnedAt.After(res.ExpectedReturnAt) {
		res.ExtraDays = actual - expected
		if res.ExtraDays < 1 {
			res.ExtraDays = 1
		}
		res.ExtraDaysFeeCents = rate * int64(res.ExtraDays)
		res.Notes = append(res.Notes, fmt.Sprintf(
			"Late return: expected %s, returned %s; %d extra day(s) x %s = %s added to extra fees.",
			FormatTime(res.ExpectedReturnAt), FormatTime(in.ReturnedAt), res.ExtraDays, FormatCents(rate), FormatCents(res.ExtraDaysFeeCents)))
	}

	if in.Vehicle.HasDistancePolicy() {
		res.AllowanceKm = int64(actual) * in.Vehicle.DailyAllowanceKm
		if res.DistanceKm > res.AllowanceKm {
			res.ExcessDistanceKm = res.DistanceKm - res.AllowanceKm
			res.ExcessDistanceCost = res.ExcessDistanceKm * in.Vehicle.ExcessPricePerKmCents
			res.Notes = append(res.Notes, fmt.Sprintf(
				"Excess distance: travelled %d km, allowance %d km (%d day(s) x %d km); %d km x %s = %s added to fines.",
				res.DistanceKm, res.AllowanceKm, actual, in.Vehicle.DailyAllowanceKm, res.ExcessDistanceKm,
				FormatCents(in.Vehicle.ExcessPricePerKmCents), FormatCents(res.ExcessDistanceCost)))
		}
	}

	return res, nil
}

// Apply merges the result into the checkin: the extra-days fee into extra fees,
// the excess distance fee into fines, and the audit lines after any operator notes.
func Apply(c *domain.Checkin, res Result) {
	c.ExtraDays = int32(res.ExtraDays)
	c.ExtraDaysFeeCents = res.ExtraDaysFeeCents
	c.ExcessDistanceKm = res.ExcessDistanceKm
	c.ExcessDistanceCents = res.ExcessDistanceCost
	c.ExtraFeesCents += res.ExtraDaysFeeCents
	c.FinesCents += res.ExcessDistanceCost

	if len(res.Notes) == 0 {
		return
	}
	lines := make([]string, 0, len(res.Notes)+1)
	if n := strings.TrimSpace(c.Notes); n != "" {
		lines = append(lines, n)
	}
	lines = append(lines, res.Notes...)
	c.Notes = strings.Join(lines, "\n")
}

// FormatTime renders t as Luanda wall time.
func FormatTime(t time.Time) string {
	return t.In(calendar.Location).Format("2006-01-02 15:04")
}

// FormatCents renders minor units as a decimal amount.
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
