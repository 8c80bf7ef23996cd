package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joelcalolo/MoFleet-sub000/internal/availability"
	"github.com/joelcalolo/MoFleet-sub000/internal/billing"
	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/lifecycle"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/pricing"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

type reservationService struct {
	reservationRepo repository.ReservationRepository
	vehicleRepo     repository.VehicleRepository
	customerRepo    repository.CustomerRepository
	handoverRepo    repository.HandoverRepository
	notifier        Notifier
}

// NewReservationService wires the lifecycle against the stores. notifier may be nil.
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	vehicleRepo repository.VehicleRepository,
	customerRepo repository.CustomerRepository,
	handoverRepo repository.HandoverRepository,
	notifier Notifier,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		customerRepo:    customerRepo,
		handoverRepo:    handoverRepo,
		notifier:        notifier,
	}
}

func (req BookingRequest) options() pricing.Options {
	return pricing.Options{
		Start:           req.Start,
		End:             req.End,
		Location:        req.Location,
		WithDriver:      req.WithDriver,
		IncludeDelivery: req.IncludeDelivery,
		IncludePickup:   req.IncludePickup,
	}
}

// Quote re-runs the overlap check and prices the request. An overlap is
// reported, not returned as an error; the write path decides.
func (s *reservationService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	logger.EnterMethod("reservationService.Quote", "vehicleID", req.VehicleID, "start", req.Start, "end", req.End)

	if err := domain.ValidateRange(req.Start, req.End); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Quote", err, "vehicleID", req.VehicleID)
		return nil, err
	}

	check, err := s.CheckAvailability(ctx, availability.Candidate{
		VehicleID: req.VehicleID,
		Start:     req.Start,
		End:       req.End,
		ExcludeID: req.ExcludeReservationID,
	})
	if err != nil {
		return nil, err
	}

	breakdown, err := pricing.Quote(vehicle, req.options())
	if err != nil {
		return nil, err
	}

	logger.ExitMethod("reservationService.Quote", "total", breakdown.TotalCents, "overlaps", check.Overlaps)
	return &Quote{Breakdown: breakdown, Overlaps: check.Overlaps, Conflicting: check.Conflicting}, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, c availability.Candidate) (availability.Result, error) {
	if err := domain.ValidateRange(c.Start, c.End); err != nil {
		return availability.Result{}, err
	}
	existing, err := s.reservationRepo.ListActiveByVehicle(ctx, c.VehicleID)
	if err != nil {
		return availability.Result{}, err
	}
	return availability.Check(c, existing)
}

func (s *reservationService) CreateReservation(ctx context.Context, actor domain.ActorID, req BookingRequest) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CreateReservation", "actor", actor, "vehicleID", req.VehicleID, "customerID", req.CustomerID)

	r := &domain.Reservation{
		ID:              uuid.NewString(),
		VehicleID:       req.VehicleID,
		CustomerID:      req.CustomerID,
		StartDate:       req.Start,
		EndDate:         req.End,
		Location:        req.Location,
		WithDriver:      req.WithDriver,
		IncludeDelivery: req.IncludeDelivery,
		IncludePickup:   req.IncludePickup,
		Status:          domain.ReservationStatusPending,
		Notes:           req.Notes,
		CreatedBy:       actor,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.customerRepo.GetByID(ctx, r.CustomerID); err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "customerID", r.CustomerID)
		return nil, err
	}
	if err := s.price(ctx, r); err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "vehicleID", r.VehicleID)
		return nil, err
	}

	if err := s.reservationRepo.Create(ctx, r); err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "vehicleID", r.VehicleID)
		return nil, err
	}

	logger.ExitMethod("reservationService.CreateReservation", "reservationID", r.ID, "total", r.TotalCents)
	return r, nil
}

// price clears the range against the current calendar and sets the total.
func (s *reservationService) price(ctx context.Context, r *domain.Reservation) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, r.VehicleID)
	if err != nil {
		return err
	}
	existing, err := s.reservationRepo.ListActiveByVehicle(ctx, r.VehicleID)
	if err != nil {
		return err
	}
	if err := availability.Ensure(availability.Candidate{
		VehicleID: r.VehicleID,
		Start:     r.StartDate,
		End:       r.EndDate,
		ExcludeID: r.ID,
	}, existing); err != nil {
		return err
	}

	total, err := pricing.ComputeTotal(vehicle, pricing.OptionsFor(r))
	if err != nil {
		return err
	}
	r.TotalCents = total
	return nil
}

func (s *reservationService) UpdateReservation(ctx context.Context, actor domain.ActorID, id string, req BookingRequest) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.UpdateReservation", "actor", actor, "reservationID", id)

	r, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanUpdate(r.Status, state); err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}
	if req.VehicleID != "" && req.VehicleID != r.VehicleID {
		return nil, domain.NewValidationError("vehicle_id", "the vehicle of a reservation cannot be changed; cancel and book again")
	}
	if req.CustomerID != "" && req.CustomerID != r.CustomerID {
		return nil, domain.NewValidationError("customer_id", "the customer of a reservation cannot be changed")
	}

	r.StartDate = req.Start
	r.EndDate = req.End
	r.Location = req.Location
	r.WithDriver = req.WithDriver
	r.IncludeDelivery = req.IncludeDelivery
	r.IncludePickup = req.IncludePickup
	r.Notes = req.Notes
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.price(ctx, r); err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}

	if err := s.reservationRepo.Update(ctx, r, domain.ReservationStatusPending, domain.ReservationStatusConfirmed); err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, "reservationID", id)
		return nil, err
	}

	logger.ExitMethod("reservationService.UpdateReservation", "reservationID", id, "total", r.TotalCents)
	return r, nil
}

func (s *reservationService) ConfirmReservation(ctx context.Context, actor domain.ActorID, id string, depositPaid bool) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.ConfirmReservation", "actor", actor, "reservationID", id)

	r, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanConfirm(r.Status, state); err != nil {
		logger.ExitMethodWithError("reservationService.ConfirmReservation", err, "reservationID", id)
		return nil, err
	}

	r.Status = domain.ReservationStatusConfirmed
	r.DepositPaid = r.DepositPaid || depositPaid
	if err := s.reservationRepo.Transition(ctx, r, domain.ReservationStatusPending); err != nil {
		logger.ExitMethodWithError("reservationService.ConfirmReservation", err, "reservationID", id)
		return nil, err
	}

	logger.ExitMethod("reservationService.ConfirmReservation", "reservationID", id)
	return r, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, actor domain.ActorID, id string) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CancelReservation", "actor", actor, "reservationID", id)

	r, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanCancel(r.Status, state); err != nil {
		logger.ExitMethodWithError("reservationService.CancelReservation", err, "reservationID", id)
		return nil, err
	}

	r.Status = domain.ReservationStatusCancelled
	if err := s.reservationRepo.Transition(ctx, r, domain.ReservationStatusPending, domain.ReservationStatusConfirmed); err != nil {
		logger.ExitMethodWithError("reservationService.CancelReservation", err, "reservationID", id)
		return nil, err
	}

	logger.ExitMethod("reservationService.CancelReservation", "reservationID", id)
	return r, nil
}

// Checkout records the handover. The reservation status is left as is.
func (s *reservationService) Checkout(ctx context.Context, actor domain.ActorID, req CheckoutRequest) (*domain.Checkout, error) {
	logger.EnterMethod("reservationService.Checkout", "actor", actor, "reservationID", req.ReservationID)

	if req.DepartureAt.IsZero() {
		return nil, domain.NewValidationError("departure_at", "departure time is required")
	}
	if req.StartOdometerKm < 0 {
		return nil, domain.NewValidationError("start_odometer_km", "odometer reading cannot be negative")
	}

	r, state, err := s.load(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanCheckout(state); err != nil {
		logger.ExitMethodWithError("reservationService.Checkout", err, "reservationID", req.ReservationID)
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, r.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.Available {
		err := &domain.ConflictError{Reason: "vehicle " + vehicle.Plate + " is not available for handover"}
		logger.ExitMethodWithError("reservationService.Checkout", err, "reservationID", req.ReservationID)
		return nil, err
	}

	co := &domain.Checkout{
		ID:              uuid.NewString(),
		ReservationID:   r.ID,
		VehicleID:       r.VehicleID,
		DepartureAt:     req.DepartureAt.In(calendar.Location),
		StartOdometerKm: req.StartOdometerKm,
		DeliveredTo:     req.DeliveredTo,
		Notes:           req.Notes,
		CreatedBy:       actor,
	}
	if err := s.handoverRepo.CreateCheckout(ctx, co); err != nil {
		logger.ExitMethodWithError("reservationService.Checkout", err, "reservationID", req.ReservationID)
		return nil, err
	}

	if err := s.vehicleRepo.SetAvailability(ctx, r.VehicleID, false); err != nil {
		logger.SecondaryWriteFailed(ctx, "mark vehicle unavailable", err, "vehicleID", r.VehicleID, "reservationID", r.ID)
	}

	logger.ExitMethod("reservationService.Checkout", "checkoutID", co.ID, "reservationID", r.ID)
	return co, nil
}

// Checkin records the return, reconciles it against the booking and releases
// the vehicle.
func (s *reservationService) Checkin(ctx context.Context, actor domain.ActorID, req CheckinRequest) (*CheckinResult, error) {
	logger.EnterMethod("reservationService.Checkin", "actor", actor, "reservationID", req.ReservationID)

	if req.ReturnedAt.IsZero() {
		return nil, domain.NewValidationError("returned_at", "return time is required")
	}
	if req.DepositReturnedCents < 0 || req.FinesCents < 0 || req.ExtraFeesCents < 0 {
		return nil, domain.NewValidationError("amounts", "deposit, fines and extra fees cannot be negative")
	}

	r, state, err := s.load(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	out, err := lifecycle.CanCheckin(state)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Checkin", err, "reservationID", req.ReservationID)
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, r.VehicleID)
	if err != nil {
		return nil, err
	}

	result, err := billing.Reconcile(billing.Input{
		Reservation:   r,
		Vehicle:       vehicle,
		Checkout:      &out.Checkout,
		ReturnedAt:    req.ReturnedAt,
		EndOdometerKm: req.EndOdometerKm,
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.Checkin", err, "reservationID", req.ReservationID)
		return nil, err
	}

	ci := &domain.Checkin{
		ID:                   uuid.NewString(),
		ReservationID:        r.ID,
		VehicleID:            r.VehicleID,
		ReturnedAt:           req.ReturnedAt.In(calendar.Location),
		EndOdometerKm:        req.EndOdometerKm,
		ReceivedBy:           req.ReceivedBy,
		DepositReturned:      req.DepositReturned,
		DepositReturnedCents: req.DepositReturnedCents,
		FinesCents:           req.FinesCents,
		ExtraFeesCents:       req.ExtraFeesCents,
		Notes:                req.Notes,
		CreatedBy:            actor,
	}
	billing.Apply(ci, result)

	if err := s.handoverRepo.CreateCheckin(ctx, ci); err != nil {
		logger.ExitMethodWithError("reservationService.Checkin", err, "reservationID", req.ReservationID)
		return nil, err
	}

	if err := s.vehicleRepo.SetAvailability(ctx, r.VehicleID, true); err != nil {
		logger.SecondaryWriteFailed(ctx, "mark vehicle available", err, "vehicleID", r.VehicleID, "reservationID", r.ID)
	}
	r.Status = domain.ReservationStatusCompleted
	if err := s.reservationRepo.Transition(ctx, r,
		domain.ReservationStatusPending, domain.ReservationStatusConfirmed, domain.ReservationStatusActive); err != nil {
		logger.SecondaryWriteFailed(ctx, "complete reservation", err, "reservationID", r.ID)
	}

	s.sendReceipt(ctx, r, vehicle, ci)

	logger.ExitMethod("reservationService.Checkin", "checkinID", ci.ID, "extraDays", ci.ExtraDays, "excessKm", ci.ExcessDistanceKm)
	return &CheckinResult{Checkin: ci, Reconciliation: result}, nil
}

func (s *reservationService) sendReceipt(ctx context.Context, r *domain.Reservation, vehicle *domain.Vehicle, ci *domain.Checkin) {
	if s.notifier == nil {
		return
	}
	customer, err := s.customerRepo.GetByID(ctx, r.CustomerID)
	if err != nil {
		logger.WarnContext(ctx, "Return receipt skipped, customer lookup failed", "reservationID", r.ID, "error", err)
		return
	}
	if customer.Email == "" {
		logger.Debug("Return receipt skipped, customer has no email", "customerID", customer.ID)
		return
	}
	if err := s.notifier.SendReturnReceipt(ctx, customer, vehicle, r, ci); err != nil {
		logger.WarnContext(ctx, "Failed to send return receipt", "reservationID", r.ID, "error", err)
	}
}

func (s *reservationService) GetReservation(ctx context.Context, id string) (*ReservationDetail, error) {
	r, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	checkout, checkin, state, err := s.handover(ctx, r)
	if err != nil {
		return nil, err
	}
	return &ReservationDetail{Reservation: r, Checkout: checkout, Checkin: checkin, State: state.Name()}, nil
}

func (s *reservationService) ListVehicleReservations(ctx context.Context, vehicleID string, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	if vehicleID == "" {
		return nil, 0, domain.NewValidationError("vehicle_id", "vehicle is required")
	}
	if status != "" && !knownStatus(status) {
		return nil, 0, domain.NewValidationError("status", "unknown reservation status "+string(status))
	}
	return s.reservationRepo.ListByVehicle(ctx, vehicleID, status, page, pageSize)
}

func knownStatus(s domain.ReservationStatus) bool {
	switch s {
	case domain.ReservationStatusPending, domain.ReservationStatusConfirmed, domain.ReservationStatusActive,
		domain.ReservationStatusCompleted, domain.ReservationStatusCancelled:
		return true
	}
	return false
}

func (s *reservationService) load(ctx context.Context, id string) (*domain.Reservation, lifecycle.State, error) {
	r, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	_, _, state, err := s.handover(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	return r, state, nil
}

func (s *reservationService) handover(ctx context.Context, r *domain.Reservation) (*domain.Checkout, *domain.Checkin, lifecycle.State, error) {
	checkout, err := s.handoverRepo.FindCheckout(ctx, r.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	checkin, err := s.handoverRepo.FindCheckin(ctx, r.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	state, err := lifecycle.Derive(r, checkout, checkin)
	if err != nil {
		return nil, nil, nil, err
	}
	return checkout, checkin, state, nil
}

// ExpectedReturn is the instant a vehicle out under r is due back.
func ExpectedReturn(r *domain.Reservation, co *domain.Checkout) time.Time {
	return calendar.AddCivilDays(co.DepartureAt, billing.ExpectedDays(r))
}
