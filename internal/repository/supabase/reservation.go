package supabase

import (
	"context"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/joelcalolo/MoFleet-sub000/internal/availability"
	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

type reservationRepository struct {
	client   Client
	handover *handoverRepository
}

func NewReservationRepository(client Client) repository.ReservationRepository {
	return &reservationRepository{client: client, handover: &handoverRepository{client: client}}
}

// recheck runs the overlap detector against the rows stored right now. The
// exclusion constraint catches whatever lands between this read and the write.
func (r *reservationRepository) recheck(c availability.Candidate) error {
	var rows []domain.Reservation
	q := r.client.From(tableReservations).Select("*", "", false).
		Eq("vehicle_id", c.VehicleID).
		Neq("status", string(domain.ReservationStatusCancelled)).
		Lte("start_date", c.End.String()).
		Gte("end_date", c.Start.String())
	if _, err := run("overlap recheck", tableReservations, q, &rows); err != nil {
		return err
	}
	return availability.Ensure(c, rows)
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	logger.EnterMethod("supabase.reservationRepository.Create", "vehicleID", res.VehicleID)

	if err := r.recheck(availability.Candidate{VehicleID: res.VehicleID, Start: res.StartDate, End: res.EndDate}); err != nil {
		logger.ExitMethodWithError("supabase.reservationRepository.Create", err)
		return err
	}
	now := time.Now().UTC()
	res.CreatedOn, res.UpdatedOn = now, now
	if _, err := run("create reservation", tableReservations, r.client.From(tableReservations).Insert(res, false, "", "minimal", ""), nil); err != nil {
		logger.ExitMethodWithError("supabase.reservationRepository.Create", err)
		return err
	}

	logger.ExitMethod("supabase.reservationRepository.Create", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var rows []domain.Reservation
	if _, err := run("get reservation", tableReservations, r.client.From(tableReservations).Select("*", "", false).Eq("id", id).Limit(1, ""), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NotFound("reservation", id)
	}
	return &rows[0], nil
}

// guardPreHandover rejects edits once a checkout exists.
func (r *reservationRepository) guardPreHandover(ctx context.Context, op, id string) error {
	checkout, err := r.handover.FindCheckout(ctx, id)
	if err != nil {
		return err
	}
	if checkout != nil {
		return domain.NewPreconditionError(op, "vehicle out", "vehicle was already handed over")
	}
	return nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation, from ...domain.ReservationStatus) error {
	if err := r.guardPreHandover(ctx, "update", res.ID); err != nil {
		return err
	}
	if err := r.recheck(availability.Candidate{VehicleID: res.VehicleID, Start: res.StartDate, End: res.EndDate, ExcludeID: res.ID}); err != nil {
		return err
	}
	res.UpdatedOn = time.Now().UTC()
	body := map[string]any{
		"start_date":       res.StartDate,
		"end_date":         res.EndDate,
		"location":         res.Location,
		"with_driver":      res.WithDriver,
		"include_delivery": res.IncludeDelivery,
		"include_pickup":   res.IncludePickup,
		"total_cents":      res.TotalCents,
		"notes":            res.Notes,
		"updated_on":       res.UpdatedOn,
	}
	return r.conditionalUpdate(ctx, "update", res.ID, body, from)
}

func (r *reservationRepository) Transition(ctx context.Context, res *domain.Reservation, from ...domain.ReservationStatus) error {
	op := "mark " + string(res.Status)
	if res.Status != domain.ReservationStatusCompleted && res.Status != domain.ReservationStatusActive {
		if err := r.guardPreHandover(ctx, op, res.ID); err != nil {
			return err
		}
	}
	res.UpdatedOn = time.Now().UTC()
	body := map[string]any{
		"status":       res.Status,
		"deposit_paid": res.DepositPaid,
		"updated_on":   res.UpdatedOn,
	}
	return r.conditionalUpdate(ctx, op, res.ID, body, from)
}

// conditionalUpdate patches the row only while its status is one of from.
func (r *reservationRepository) conditionalUpdate(ctx context.Context, op, id string, body map[string]any, from []domain.ReservationStatus) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	var rows []domain.Reservation
	q := r.client.From(tableReservations).Update(body, "representation", "").Eq("id", id).In("status", statuses)
	if _, err := run(op+" reservation", tableReservations, q, &rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return domain.NewPreconditionError(op, string(current.Status), "reservation changed concurrently or was already handed over")
}

func (r *reservationRepository) ListActiveByVehicle(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	q := r.client.From(tableReservations).Select("*", "", false).
		Eq("vehicle_id", vehicleID).
		Neq("status", string(domain.ReservationStatusCancelled)).
		Order("start_date", &postgrest.OrderOpts{Ascending: true})
	if _, err := run("list active reservations", tableReservations, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reservationRepository) ListByVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	from, to := pageRange(page, pageSize)
	q := r.client.From(tableReservations).Select("*", "exact", false).Eq("vehicle_id", vehicleID)
	if status != "" {
		q = q.Eq("status", string(status))
	}
	q = q.Order("start_date", &postgrest.OrderOpts{Ascending: false}).Range(from, to, "")

	var rows []domain.Reservation
	count, err := run("list reservations", tableReservations, q, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, int32(count), nil
}

func (r *reservationRepository) ListOutEndingBy(ctx context.Context, day calendar.Date) ([]domain.Reservation, error) {
	open, err := r.handover.ListOpenCheckouts(ctx)
	if err != nil || len(open) == 0 {
		return nil, err
	}
	ids := make([]string, 0, len(open))
	for _, c := range open {
		ids = append(ids, c.ReservationID)
	}
	var rows []domain.Reservation
	q := r.client.From(tableReservations).Select("*", "", false).
		In("id", ids).
		Lte("end_date", day.String()).
		Order("end_date", &postgrest.OrderOpts{Ascending: true})
	if _, err := run("list overdue reservations", tableReservations, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reservationRepository) ListCheckedInNotCompleted(ctx context.Context) ([]domain.Reservation, error) {
	var checkins []struct {
		ReservationID string `json:"reservation_id"`
	}
	if _, err := run("list checkins", tableCheckins, r.client.From(tableCheckins).Select("reservation_id", "", false), &checkins); err != nil {
		return nil, err
	}
	if len(checkins) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(checkins))
	for _, c := range checkins {
		ids = append(ids, c.ReservationID)
	}
	var rows []domain.Reservation
	q := r.client.From(tableReservations).Select("*", "", false).
		In("id", ids).
		Neq("status", string(domain.ReservationStatusCompleted))
	if _, err := run("list stale statuses", tableReservations, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
