package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

const checkoutColumns = `id, reservation_id, vehicle_id, departure_at, start_odometer_km, delivered_to, notes, created_by, created_on`

const checkinColumns = `id, reservation_id, vehicle_id, returned_at, end_odometer_km, received_by,
	deposit_returned, deposit_returned_cents, fines_cents, extra_fees_cents, notes,
	extra_days, extra_days_fee_cents, excess_distance_km, excess_distance_cents, created_by, created_on`

type handoverRepository struct {
	db *sql.DB
}

func NewHandoverRepository(db *sql.DB) repository.HandoverRepository {
	return &handoverRepository{db: db}
}

func scanCheckout(row rowScanner) (*domain.Checkout, error) {
	c := &domain.Checkout{}
	err := row.Scan(&c.ID, &c.ReservationID, &c.VehicleID, &c.DepartureAt, &c.StartOdometerKm, &c.DeliveredTo, &c.Notes, &c.CreatedBy, &c.CreatedOn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanCheckin(row rowScanner) (*domain.Checkin, error) {
	c := &domain.Checkin{}
	err := row.Scan(&c.ID, &c.ReservationID, &c.VehicleID, &c.ReturnedAt, &c.EndOdometerKm, &c.ReceivedBy,
		&c.DepositReturned, &c.DepositReturnedCents, &c.FinesCents, &c.ExtraFeesCents, &c.Notes,
		&c.ExtraDays, &c.ExtraDaysFeeCents, &c.ExcessDistanceKm, &c.ExcessDistanceCents, &c.CreatedBy, &c.CreatedOn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCheckout re-checks, under the vehicle and reservation row locks, that the
// vehicle is available, the reservation is not cancelled and has no checkout.
func (r *handoverRepository) CreateCheckout(ctx context.Context, c *domain.Checkout) error {
	logger.EnterMethod("handoverRepository.CreateCheckout", "reservationID", c.ReservationID, "vehicleID", c.VehicleID)

	now := time.Now()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		available, err := lockVehicle(ctx, tx, c.VehicleID)
		if err != nil {
			return err
		}

		var status domain.ReservationStatus
		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT status, EXISTS (SELECT 1 FROM checkouts WHERE reservation_id = r.id) FROM reservations r WHERE id = $1 FOR UPDATE`,
			c.ReservationID).Scan(&status, &exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("reservation", c.ReservationID)
		}
		if err != nil {
			return err
		}
		switch {
		case exists:
			return domain.NewPreconditionError("checkout", "vehicle out", "a checkout is already recorded for this reservation")
		case status == domain.ReservationStatusCancelled:
			return domain.NewPreconditionError("checkout", "cancelled", "reservation is cancelled")
		case !available:
			return &domain.ConflictError{Reason: "vehicle is not available for handover"}
		}

		query := `INSERT INTO checkouts (` + checkoutColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		_, err = tx.ExecContext(ctx, query, c.ID, c.ReservationID, c.VehicleID, c.DepartureAt, c.StartOdometerKm, c.DeliveredTo, c.Notes, c.CreatedBy, now)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("handoverRepository.CreateCheckout", err, "reservationID", c.ReservationID)
		return mapError("create checkout", err)
	}
	c.CreatedOn = now

	logger.ExitMethod("handoverRepository.CreateCheckout", "checkoutID", c.ID)
	return nil
}

func (r *handoverRepository) FindCheckout(ctx context.Context, reservationID string) (*domain.Checkout, error) {
	c, err := scanCheckout(r.db.QueryRowContext(ctx, `SELECT `+checkoutColumns+` FROM checkouts WHERE reservation_id = $1`, reservationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("find checkout", err)
	}
	return c, nil
}

// CreateCheckin locks the checkout row so two returns of the same rental serialise.
func (r *handoverRepository) CreateCheckin(ctx context.Context, c *domain.Checkin) error {
	logger.EnterMethod("handoverRepository.CreateCheckin", "reservationID", c.ReservationID)

	now := time.Now()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var checkedIn bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM checkins WHERE reservation_id = co.reservation_id) FROM checkouts co WHERE reservation_id = $1 FOR UPDATE`,
			c.ReservationID).Scan(&checkedIn)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewPreconditionError("checkin", "awaiting handover", "no checkout recorded for this reservation")
		}
		if err != nil {
			return err
		}
		if checkedIn {
			return domain.NewPreconditionError("checkin", "completed", "a checkin is already recorded for this reservation")
		}

		query := `INSERT INTO checkins (` + checkinColumns + `)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
		_, err = tx.ExecContext(ctx, query, c.ID, c.ReservationID, c.VehicleID, c.ReturnedAt, c.EndOdometerKm, c.ReceivedBy,
			c.DepositReturned, c.DepositReturnedCents, c.FinesCents, c.ExtraFeesCents, c.Notes,
			c.ExtraDays, c.ExtraDaysFeeCents, c.ExcessDistanceKm, c.ExcessDistanceCents, c.CreatedBy, now)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("handoverRepository.CreateCheckin", err, "reservationID", c.ReservationID)
		return mapError("create checkin", err)
	}
	c.CreatedOn = now

	logger.ExitMethod("handoverRepository.CreateCheckin", "checkinID", c.ID)
	return nil
}

func (r *handoverRepository) FindCheckin(ctx context.Context, reservationID string) (*domain.Checkin, error) {
	c, err := scanCheckin(r.db.QueryRowContext(ctx, `SELECT `+checkinColumns+` FROM checkins WHERE reservation_id = $1`, reservationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("find checkin", err)
	}
	return c, nil
}

func (r *handoverRepository) ListOpenCheckouts(ctx context.Context) ([]domain.Checkout, error) {
	query := `SELECT ` + prefixed("co", checkoutColumns) + `
	          FROM checkouts co
	          LEFT JOIN checkins ci ON ci.reservation_id = co.reservation_id
	          WHERE ci.id IS NULL`
	logger.DatabaseCall("list open checkouts", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("list open checkouts", 0, err)
		return nil, mapError("list open checkouts", err)
	}
	defer rows.Close()

	var out []domain.Checkout
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, mapError("list open checkouts", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list open checkouts", err)
	}
	logger.DatabaseResult("list open checkouts", int64(len(out)), nil)
	return out, nil
}
