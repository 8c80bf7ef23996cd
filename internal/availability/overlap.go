// Package availability decides whether a vehicle is free for a date range.
package availability

import (
	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

// Result of an overlap check. Conflicting is any one clashing reservation.
type Result struct {
	Overlaps    bool
	Conflicting *domain.Reservation
}

// Candidate is the range being booked or edited.
type Candidate struct {
	VehicleID string
	Start     calendar.Date
	End       calendar.Date
	// ExcludeID skips the reservation being edited so a no-op edit never clashes with itself.
	ExcludeID string
}

// Overlaps reports whether two inclusive date ranges share at least one day.
func Overlaps(s1, e1, s2, e2 calendar.Date) bool {
	return !s1.After(e2) && !s2.After(e1)
}

// Check tests the candidate against existing reservations. Reservations of other
// vehicles, cancelled ones and the excluded id are ignored; the first clash wins.
func Check(c Candidate, existing []domain.Reservation) (Result, error) {
	if err := domain.ValidateRange(c.Start, c.End); err != nil {
		return Result{}, err
	}
	for i := range existing {
		r := &existing[i]
		if r.VehicleID != c.VehicleID || r.Status == domain.ReservationStatusCancelled {
			continue
		}
		if c.ExcludeID != "" && r.ID == c.ExcludeID {
			continue
		}
		if Overlaps(c.Start, c.End, r.StartDate, r.EndDate) {
			conflict := *r
			return Result{Overlaps: true, Conflicting: &conflict}, nil
		}
	}
	return Result{}, nil
}

// Ensure is Check turned into an error: a clash yields *domain.ConflictError.
func Ensure(c Candidate, existing []domain.Reservation) error {
	res, err := Check(c, existing)
	if err != nil {
		return err
	}
	if res.Overlaps {
		return &domain.ConflictError{
			Reason:      "vehicle already reserved for an overlapping period",
			Conflicting: res.Conflicting,
		}
	}
	return nil
}
