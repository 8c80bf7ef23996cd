package supabase

import (
	"context"
	"strconv"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

// vehicleRow is the flat column layout of the vehicles table.
type vehicleRow struct {
	ID    string `json:"id"`
	Plate string `json:"plate"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int32  `json:"year"`
	domain.RateMatrix
	DeliveryFeeCents      int64          `json:"delivery_fee_cents"`
	PickupFeeCents        int64          `json:"pickup_fee_cents"`
	DailyAllowanceKm      int64          `json:"daily_allowance_km"`
	ExcessPricePerKmCents int64          `json:"excess_price_per_km_cents"`
	Available             bool           `json:"available"`
	CreatedBy             domain.ActorID `json:"created_by"`
	CreatedOn             time.Time      `json:"created_on"`
	UpdatedOn             time.Time      `json:"updated_on"`
}

func toVehicleRow(v *domain.Vehicle) vehicleRow {
	return vehicleRow{
		ID: v.ID, Plate: v.Plate, Brand: v.Brand, Model: v.Model, Year: v.Year,
		RateMatrix:       v.Rates,
		DeliveryFeeCents: v.DeliveryFeeCents, PickupFeeCents: v.PickupFeeCents,
		DailyAllowanceKm: v.DailyAllowanceKm, ExcessPricePerKmCents: v.ExcessPricePerKmCents,
		Available: v.Available, CreatedBy: v.CreatedBy, CreatedOn: v.CreatedOn, UpdatedOn: v.UpdatedOn,
	}
}

func (r vehicleRow) toDomain() domain.Vehicle {
	return domain.Vehicle{
		ID: r.ID, Plate: r.Plate, Brand: r.Brand, Model: r.Model, Year: r.Year,
		Rates:            r.RateMatrix,
		DeliveryFeeCents: r.DeliveryFeeCents, PickupFeeCents: r.PickupFeeCents,
		DailyAllowanceKm: r.DailyAllowanceKm, ExcessPricePerKmCents: r.ExcessPricePerKmCents,
		Available: r.Available, CreatedBy: r.CreatedBy, CreatedOn: r.CreatedOn, UpdatedOn: r.UpdatedOn,
	}
}

type vehicleRepository struct {
	client Client
}

func NewVehicleRepository(client Client) repository.VehicleRepository {
	return &vehicleRepository{client: client}
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	now := time.Now().UTC()
	v.CreatedOn, v.UpdatedOn = now, now
	_, err := run("create vehicle", tableVehicles, r.client.From(tableVehicles).Insert(toVehicleRow(v), false, "", "minimal", ""), nil)
	return err
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var rows []vehicleRow
	if _, err := run("get vehicle", tableVehicles, r.client.From(tableVehicles).Select("*", "", false).Eq("id", id).Limit(1, ""), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NotFound("vehicle", id)
	}
	v := rows[0].toDomain()
	return &v, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	v.UpdatedOn = time.Now().UTC()
	body := map[string]any{
		"plate":                            v.Plate,
		"brand":                            v.Brand,
		"model":                            v.Model,
		"year":                             v.Year,
		"in_city_without_driver_cents":     v.Rates.InCityWithoutDriverCents,
		"in_city_with_driver_cents":        v.Rates.InCityWithDriverCents,
		"out_of_city_without_driver_cents": v.Rates.OutOfCityWithoutDriverCents,
		"out_of_city_with_driver_cents":    v.Rates.OutOfCityWithDriverCents,
		"delivery_fee_cents":               v.DeliveryFeeCents,
		"pickup_fee_cents":                 v.PickupFeeCents,
		"daily_allowance_km":               v.DailyAllowanceKm,
		"excess_price_per_km_cents":        v.ExcessPricePerKmCents,
		"updated_on":                       v.UpdatedOn,
	}
	var rows []vehicleRow
	if _, err := run("update vehicle", tableVehicles, r.client.From(tableVehicles).Update(body, "representation", "").Eq("id", v.ID), &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.NotFound("vehicle", v.ID)
	}
	return nil
}

func (r *vehicleRepository) List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	from, to := pageRange(page, pageSize)
	q := r.client.From(tableVehicles).Select("*", "exact", false)
	if onlyAvailable {
		q = q.Eq("available", "true")
	}
	q = q.Order("plate", &postgrest.OrderOpts{Ascending: true}).Range(from, to, "")

	var rows []vehicleRow
	count, err := run("list vehicles", tableVehicles, q, &rows)
	if err != nil {
		return nil, 0, err
	}
	vehicles := make([]domain.Vehicle, 0, len(rows))
	for _, row := range rows {
		vehicles = append(vehicles, row.toDomain())
	}
	return vehicles, int32(count), nil
}

func (r *vehicleRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	body := map[string]any{"available": available, "updated_on": time.Now().UTC()}
	var rows []vehicleRow
	if _, err := run("set vehicle availability", tableVehicles, r.client.From(tableVehicles).Update(body, "representation", "").Eq("id", id), &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.NotFound("vehicle", id)
	}
	return nil
}

// RefreshAvailability reads the flag and the vehicle's open checkouts right
// before writing, and only writes when the row still carries the flag it read.
// A changed row is left to the next run.
func (r *vehicleRepository) RefreshAvailability(ctx context.Context, id string) (available, changed bool, err error) {
	v, err := r.GetByID(ctx, id)
	if err != nil {
		return false, false, err
	}

	var checkouts []struct {
		ReservationID string `json:"reservation_id"`
	}
	if _, err := run("list vehicle checkouts", tableCheckouts, r.client.From(tableCheckouts).Select("reservation_id", "", false).Eq("vehicle_id", id), &checkouts); err != nil {
		return false, false, err
	}
	out := false
	if len(checkouts) > 0 {
		ids := make([]string, len(checkouts))
		for i, c := range checkouts {
			ids[i] = c.ReservationID
		}
		var checkins []struct {
			ReservationID string `json:"reservation_id"`
		}
		if _, err := run("list vehicle checkins", tableCheckins, r.client.From(tableCheckins).Select("reservation_id", "", false).In("reservation_id", ids), &checkins); err != nil {
			return false, false, err
		}
		out = len(checkins) < len(checkouts)
	}

	available = !out
	if available == v.Available {
		return available, false, nil
	}
	body := map[string]any{"available": available, "updated_on": time.Now().UTC()}
	var rows []vehicleRow
	q := r.client.From(tableVehicles).Update(body, "representation", "").Eq("id", id).Eq("available", strconv.FormatBool(v.Available))
	if _, err := run("refresh vehicle availability", tableVehicles, q, &rows); err != nil {
		return false, false, err
	}
	if len(rows) == 0 {
		return v.Available, false, nil
	}
	return available, true, nil
}
