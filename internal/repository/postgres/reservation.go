package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/joelcalolo/MoFleet-sub000/internal/availability"
	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

const reservationColumns = `id, vehicle_id, customer_id, start_date, end_date, location,
	with_driver, include_delivery, include_pickup, total_cents, status, deposit_paid, notes,
	created_by, created_on, updated_on`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	r := &domain.Reservation{}
	err := row.Scan(&r.ID, &r.VehicleID, &r.CustomerID, &r.StartDate, &r.EndDate, &r.Location,
		&r.WithDriver, &r.IncludeDelivery, &r.IncludePickup, &r.TotalCents, &r.Status, &r.DepositPaid, &r.Notes,
		&r.CreatedBy, &r.CreatedOn, &r.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return r, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryReservations(ctx context.Context, q queryer, op, query string, args ...any) ([]domain.Reservation, error) {
	logger.DatabaseCall(op, query, "args", len(args))
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult(op, int64(len(out)), nil)
	return out, nil
}

// lockVehicle serialises every write that touches the vehicle's calendar.
func lockVehicle(ctx context.Context, tx *sql.Tx, vehicleID string) (available bool, err error) {
	err = tx.QueryRowContext(ctx, `SELECT available FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.NotFound("vehicle", vehicleID)
	}
	return available, err
}

func (r *reservationRepository) ensureNoOverlap(ctx context.Context, tx *sql.Tx, c availability.Candidate) error {
	existing, err := queryReservations(ctx, tx, "overlap recheck",
		`SELECT `+reservationColumns+` FROM reservations WHERE vehicle_id = $1 AND status <> 'cancelled' AND start_date <= $2 AND end_date >= $3`,
		c.VehicleID, c.End, c.Start)
	if err != nil {
		return err
	}
	return availability.Ensure(c, existing)
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	logger.EnterMethod("reservationRepository.Create", "vehicleID", res.VehicleID, "start", res.StartDate, "end", res.EndDate)

	now := time.Now()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := lockVehicle(ctx, tx, res.VehicleID); err != nil {
			return err
		}
		if err := r.ensureNoOverlap(ctx, tx, availability.Candidate{VehicleID: res.VehicleID, Start: res.StartDate, End: res.EndDate}); err != nil {
			return err
		}
		query := `INSERT INTO reservations (` + reservationColumns + `)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
		_, err := tx.ExecContext(ctx, query, res.ID, res.VehicleID, res.CustomerID, res.StartDate, res.EndDate, res.Location,
			res.WithDriver, res.IncludeDelivery, res.IncludePickup, res.TotalCents, res.Status, res.DepositPaid, res.Notes,
			res.CreatedBy, now, now)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.Create", err, "vehicleID", res.VehicleID)
		return mapError("create reservation", err)
	}
	res.CreatedOn, res.UpdatedOn = now, now

	logger.ExitMethod("reservationRepository.Create", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("reservation", id)
	}
	if err != nil {
		return nil, mapError("get reservation", err)
	}
	return res, nil
}

func statusStrings(from []domain.ReservationStatus) []string {
	out := make([]string, len(from))
	for i, s := range from {
		out[i] = string(s)
	}
	return out
}

// lockReservation checks the stored status against from and that no checkout exists yet.
func lockReservation(ctx context.Context, tx *sql.Tx, op, id string, from []domain.ReservationStatus) error {
	var status domain.ReservationStatus
	var checkedOut bool
	err := tx.QueryRowContext(ctx,
		`SELECT status, EXISTS (SELECT 1 FROM checkouts WHERE reservation_id = r.id) FROM reservations r WHERE id = $1 FOR UPDATE`,
		id).Scan(&status, &checkedOut)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("reservation", id)
	}
	if err != nil {
		return err
	}
	if checkedOut {
		return domain.NewPreconditionError(op, "vehicle out", "vehicle was already handed over")
	}
	for _, s := range from {
		if s == status {
			return nil
		}
	}
	return domain.NewPreconditionError(op, string(status), fmt.Sprintf("status must be one of %v", from))
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation, from ...domain.ReservationStatus) error {
	logger.EnterMethod("reservationRepository.Update", "reservationID", res.ID)

	now := time.Now()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := lockVehicle(ctx, tx, res.VehicleID); err != nil {
			return err
		}
		if err := lockReservation(ctx, tx, "update", res.ID, from); err != nil {
			return err
		}
		if err := r.ensureNoOverlap(ctx, tx, availability.Candidate{
			VehicleID: res.VehicleID, Start: res.StartDate, End: res.EndDate, ExcludeID: res.ID,
		}); err != nil {
			return err
		}
		query := `UPDATE reservations SET start_date=$1, end_date=$2, location=$3, with_driver=$4,
		          include_delivery=$5, include_pickup=$6, total_cents=$7, notes=$8, updated_on=$9
		          WHERE id=$10`
		_, err := tx.ExecContext(ctx, query, res.StartDate, res.EndDate, res.Location, res.WithDriver,
			res.IncludeDelivery, res.IncludePickup, res.TotalCents, res.Notes, now, res.ID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.Update", err, "reservationID", res.ID)
		return mapError("update reservation", err)
	}
	res.UpdatedOn = now

	logger.ExitMethod("reservationRepository.Update", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) Transition(ctx context.Context, res *domain.Reservation, from ...domain.ReservationStatus) error {
	logger.EnterMethod("reservationRepository.Transition", "reservationID", res.ID, "to", res.Status)

	query := `UPDATE reservations SET status=$1, deposit_paid=$2, updated_on=$3
	          WHERE id=$4 AND status = ANY($5)`
	if res.Status != domain.ReservationStatusCompleted && res.Status != domain.ReservationStatusActive {
		// pre-handover transitions lose against a checkout committed meanwhile
		query += ` AND NOT EXISTS (SELECT 1 FROM checkouts WHERE reservation_id = reservations.id)`
	}
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, res.Status, res.DepositPaid, now, res.ID, pq.Array(statusStrings(from)))
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.Transition", err, "reservationID", res.ID)
		return mapError("transition reservation", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return mapError("transition reservation", err)
	}
	if n == 0 {
		current, err := r.GetByID(ctx, res.ID)
		if err != nil {
			return err
		}
		err = domain.NewPreconditionError("mark "+string(res.Status), string(current.Status), "reservation changed concurrently or was already handed over")
		logger.ExitMethodWithError("reservationRepository.Transition", err, "reservationID", res.ID)
		return err
	}
	res.UpdatedOn = now

	logger.ExitMethod("reservationRepository.Transition", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) ListActiveByVehicle(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	out, err := queryReservations(ctx, r.db, "list active reservations",
		`SELECT `+reservationColumns+` FROM reservations WHERE vehicle_id = $1 AND status <> 'cancelled' ORDER BY start_date`,
		vehicleID)
	return out, mapError("list active reservations", err)
}

func (r *reservationRepository) ListByVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	limit, offset := pageOffset(page, pageSize)

	where := ` FROM reservations WHERE vehicle_id = $1`
	args := []any{vehicleID}
	argIdx := 2
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
		argIdx++
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, mapError("count reservations", err)
	}

	query := `SELECT ` + reservationColumns + where + fmt.Sprintf(` ORDER BY start_date DESC LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, limit, offset)
	out, err := queryReservations(ctx, r.db, "list reservations", query, args...)
	if err != nil {
		return nil, 0, mapError("list reservations", err)
	}
	return out, count, nil
}

func (r *reservationRepository) ListOutEndingBy(ctx context.Context, day calendar.Date) ([]domain.Reservation, error) {
	query := `SELECT ` + prefixed("r", reservationColumns) + `
	          FROM reservations r
	          JOIN checkouts co ON co.reservation_id = r.id
	          LEFT JOIN checkins ci ON ci.reservation_id = r.id
	          WHERE ci.id IS NULL AND r.end_date <= $1
	          ORDER BY r.end_date`
	out, err := queryReservations(ctx, r.db, "list overdue reservations", query, day)
	return out, mapError("list overdue reservations", err)
}

func (r *reservationRepository) ListCheckedInNotCompleted(ctx context.Context) ([]domain.Reservation, error) {
	query := `SELECT ` + prefixed("r", reservationColumns) + `
	          FROM reservations r
	          JOIN checkins ci ON ci.reservation_id = r.id
	          WHERE r.status <> 'completed'`
	out, err := queryReservations(ctx, r.db, "list stale statuses", query)
	return out, mapError("list stale statuses", err)
}
