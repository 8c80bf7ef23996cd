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

const vehicleColumns = `id, plate, brand, model, year,
	in_city_without_driver_cents, in_city_with_driver_cents,
	out_of_city_without_driver_cents, out_of_city_with_driver_cents,
	delivery_fee_cents, pickup_fee_cents, daily_allowance_km, excess_price_per_km_cents,
	available, created_by, created_on, updated_on`

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := row.Scan(&v.ID, &v.Plate, &v.Brand, &v.Model, &v.Year,
		&v.Rates.InCityWithoutDriverCents, &v.Rates.InCityWithDriverCents,
		&v.Rates.OutOfCityWithoutDriverCents, &v.Rates.OutOfCityWithDriverCents,
		&v.DeliveryFeeCents, &v.PickupFeeCents, &v.DailyAllowanceKm, &v.ExcessPricePerKmCents,
		&v.Available, &v.CreatedBy, &v.CreatedOn, &v.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	logger.EnterMethod("vehicleRepository.Create", "plate", v.Plate)

	query := `INSERT INTO vehicles (` + vehicleColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, v.ID, v.Plate, v.Brand, v.Model, v.Year,
		v.Rates.InCityWithoutDriverCents, v.Rates.InCityWithDriverCents,
		v.Rates.OutOfCityWithoutDriverCents, v.Rates.OutOfCityWithDriverCents,
		v.DeliveryFeeCents, v.PickupFeeCents, v.DailyAllowanceKm, v.ExcessPricePerKmCents,
		v.Available, v.CreatedBy, now, now)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Create", err, "plate", v.Plate)
		return mapError("create vehicle", err)
	}
	v.CreatedOn, v.UpdatedOn = now, now

	logger.ExitMethod("vehicleRepository.Create", "vehicleID", v.ID)
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("vehicle", id)
	}
	if err != nil {
		return nil, mapError("get vehicle", err)
	}
	return v, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	logger.EnterMethod("vehicleRepository.Update", "vehicleID", v.ID)

	query := `UPDATE vehicles SET plate=$1, brand=$2, model=$3, year=$4,
	          in_city_without_driver_cents=$5, in_city_with_driver_cents=$6,
	          out_of_city_without_driver_cents=$7, out_of_city_with_driver_cents=$8,
	          delivery_fee_cents=$9, pickup_fee_cents=$10, daily_allowance_km=$11,
	          excess_price_per_km_cents=$12, updated_on=$13
	          WHERE id=$14`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, v.Plate, v.Brand, v.Model, v.Year,
		v.Rates.InCityWithoutDriverCents, v.Rates.InCityWithDriverCents,
		v.Rates.OutOfCityWithoutDriverCents, v.Rates.OutOfCityWithDriverCents,
		v.DeliveryFeeCents, v.PickupFeeCents, v.DailyAllowanceKm, v.ExcessPricePerKmCents,
		now, v.ID)
	if err == nil {
		err = expectOne(res, "vehicle", v.ID)
	}
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Update", err, "vehicleID", v.ID)
		return mapError("update vehicle", err)
	}
	v.UpdatedOn = now

	logger.ExitMethod("vehicleRepository.Update", "vehicleID", v.ID)
	return nil
}

func (r *vehicleRepository) List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	limit, offset := pageOffset(page, pageSize)

	where := ""
	if onlyAvailable {
		where = " WHERE available = TRUE"
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM vehicles`+where).Scan(&count); err != nil {
		return nil, 0, mapError("count vehicles", err)
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles` + where + ` ORDER BY plate LIMIT $1 OFFSET $2`
	logger.DatabaseCall("list vehicles", query, "limit", limit, "offset", offset)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		logger.DatabaseResult("list vehicles", 0, err)
		return nil, 0, mapError("list vehicles", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, mapError("list vehicles", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list vehicles", err)
	}
	logger.DatabaseResult("list vehicles", int64(len(vehicles)), nil)
	return vehicles, count, nil
}

func (r *vehicleRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	query := `UPDATE vehicles SET available=$1, updated_on=$2 WHERE id=$3`
	logger.DatabaseCall("set availability", query, "vehicleID", id, "available", available)
	res, err := r.db.ExecContext(ctx, query, available, time.Now(), id)
	if err == nil {
		err = expectOne(res, "vehicle", id)
	}
	logger.DatabaseResult("set availability", 1, err)
	return mapError("set vehicle availability", err)
}

// RefreshAvailability holds the vehicle row lock, the same lock CreateCheckout
// takes, while it looks for an open checkout and rewrites the flag.
func (r *vehicleRepository) RefreshAvailability(ctx context.Context, id string) (available, changed bool, err error) {
	logger.EnterMethod("vehicleRepository.RefreshAvailability", "vehicleID", id)

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := lockVehicle(ctx, tx, id)
		if err != nil {
			return err
		}
		var out bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM checkouts co WHERE co.vehicle_id = $1
			   AND NOT EXISTS (SELECT 1 FROM checkins ci WHERE ci.reservation_id = co.reservation_id))`,
			id).Scan(&out)
		if err != nil {
			return err
		}
		available = !out
		if available == current {
			return nil
		}
		changed = true
		_, err = tx.ExecContext(ctx, `UPDATE vehicles SET available=$1, updated_on=$2 WHERE id=$3`, available, time.Now(), id)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.RefreshAvailability", err, "vehicleID", id)
		return false, false, mapError("refresh vehicle availability", err)
	}

	logger.ExitMethod("vehicleRepository.RefreshAvailability", "vehicleID", id, "available", available, "changed", changed)
	return available, changed, nil
}

func expectOne(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}
