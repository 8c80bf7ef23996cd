package payload

import (
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/availability"
	"github.com/joelcalolo/MoFleet-sub000/internal/billing"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/pricing"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

type QuoteView struct {
	Breakdown   pricing.Breakdown   `json:"breakdown"`
	Overlaps    bool                `json:"overlaps"`
	Conflicting *domain.Reservation `json:"conflicting,omitempty"`
}

func NewQuoteView(q *service.Quote) QuoteView {
	return QuoteView{Breakdown: q.Breakdown, Overlaps: q.Overlaps, Conflicting: q.Conflicting}
}

type AvailabilityView struct {
	Available   bool                `json:"available"`
	Conflicting *domain.Reservation `json:"conflicting,omitempty"`
}

func NewAvailabilityView(r availability.Result) AvailabilityView {
	return AvailabilityView{Available: !r.Overlaps, Conflicting: r.Conflicting}
}

type ReservationView struct {
	Reservation *domain.Reservation `json:"reservation"`
}

type ReservationDetailView struct {
	Reservation *domain.Reservation `json:"reservation"`
	Checkout    *domain.Checkout    `json:"checkout,omitempty"`
	Checkin     *domain.Checkin     `json:"checkin,omitempty"`
	State       string              `json:"state"`
}

func NewReservationDetailView(d *service.ReservationDetail) ReservationDetailView {
	return ReservationDetailView{Reservation: d.Reservation, Checkout: d.Checkout, Checkin: d.Checkin, State: d.State}
}

type ReconciliationView struct {
	ExpectedDays        int       `json:"expected_days"`
	ActualDays          int       `json:"actual_days"`
	ExpectedReturnAt    time.Time `json:"expected_return_at"`
	DailyRateCents      int64     `json:"daily_rate_cents"`
	ExtraDays           int       `json:"extra_days"`
	ExtraDaysFeeCents   int64     `json:"extra_days_fee_cents"`
	DistanceKm          int64     `json:"distance_km"`
	AllowanceKm         int64     `json:"allowance_km"`
	ExcessDistanceKm    int64     `json:"excess_distance_km"`
	ExcessDistanceCents int64     `json:"excess_distance_cents"`
	Notes               []string  `json:"notes,omitempty"`
}

type CheckinView struct {
	Checkin        *domain.Checkin    `json:"checkin"`
	Reconciliation ReconciliationView `json:"reconciliation"`
}

func NewReconciliationView(res billing.Result) ReconciliationView {
	return ReconciliationView{
		ExpectedDays:        res.ExpectedDays,
		ActualDays:          res.ActualDays,
		ExpectedReturnAt:    res.ExpectedReturnAt,
		DailyRateCents:      res.DailyRateCents,
		ExtraDays:           res.ExtraDays,
		ExtraDaysFeeCents:   res.ExtraDaysFeeCents,
		DistanceKm:          res.DistanceKm,
		AllowanceKm:         res.AllowanceKm,
		ExcessDistanceKm:    res.ExcessDistanceKm,
		ExcessDistanceCents: res.ExcessDistanceCost,
		Notes:               res.Notes,
	}
}

func NewCheckinView(r *service.CheckinResult) CheckinView {
	return CheckinView{Checkin: r.Checkin, Reconciliation: NewReconciliationView(r.Reconciliation)}
}

type CheckoutView struct {
	Checkout *domain.Checkout `json:"checkout"`
}

type VehicleView struct {
	Vehicle *domain.Vehicle `json:"vehicle"`
}

type CustomerView struct {
	Customer *domain.Customer `json:"customer"`
}

type ListView[T any] struct {
	Items []T   `json:"items"`
	Total int32 `json:"total"`
}

func NewListView[T any](items []T, total int32) ListView[T] {
	if items == nil {
		items = []T{}
	}
	return ListView[T]{Items: items, Total: total}
}
