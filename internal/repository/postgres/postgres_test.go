package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

var reservationCols = []string{"id", "vehicle_id", "customer_id", "start_date", "end_date", "location",
	"with_driver", "include_delivery", "include_pickup", "total_cents", "status", "deposit_paid", "notes",
	"created_by", "created_on", "updated_on"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func mustDate(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func testReservation(t *testing.T) *domain.Reservation {
	return &domain.Reservation{
		ID:         "res-1",
		VehicleID:  "veh-1",
		CustomerID: "cus-1",
		StartDate:  mustDate(t, "2024-03-01"),
		EndDate:    mustDate(t, "2024-03-03"),
		Location:   domain.LocationInCity,
		TotalCents: 30000,
		Status:     domain.ReservationStatusPending,
		CreatedBy:  "agent-7",
	}
}

func TestReservationRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReservationRepository(db)
		res := testReservation(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WithArgs("veh-1").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(true))
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE vehicle_id").
			WithArgs("veh-1", "2024-03-03", "2024-03-01").
			WillReturnRows(sqlmock.NewRows(reservationCols))
		mock.ExpectExec("INSERT INTO reservations").
			WithArgs("res-1", "veh-1", "cus-1", "2024-03-01", "2024-03-03", "in_city",
				false, false, false, int64(30000), "pending", false, "", "agent-7", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(ctx, res)
		require.NoError(t, err)
		assert.False(t, res.CreatedOn.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Overlap found at write time", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReservationRepository(db)
		res := testReservation(t)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(true))
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE vehicle_id").
			WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(
				"res-0", "veh-1", "cus-9", time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "in_city",
				false, false, false, 30000, "confirmed", true, "", "agent-1", now, now))
		mock.ExpectRollback()

		err := repo.Create(ctx, res)
		require.Error(t, err)
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.NotNil(t, conflict.Conflicting)
		assert.Equal(t, "res-0", conflict.Conflicting.ID)
		assert.Equal(t, "cus-9", conflict.Conflicting.CustomerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exclusion constraint rejects concurrent insert", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(true))
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE vehicle_id").
			WillReturnRows(sqlmock.NewRows(reservationCols))
		mock.ExpectExec("INSERT INTO reservations").
			WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"})
		mock.ExpectRollback()

		err := repo.Create(ctx, testReservation(t))
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown vehicle", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Create(ctx, testReservation(t))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestReservationRepository_Update(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	res := testReservation(t)

	t.Run("Already handed over", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(false))
		mock.ExpectQuery("SELECT status, EXISTS").
			WithArgs("res-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "exists"}).AddRow("confirmed", true))
		mock.ExpectRollback()

		err := repo.Update(ctx, res, domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
		assert.ErrorIs(t, err, domain.ErrPrecondition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Own row is not a conflict", func(t *testing.T) {
		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(true))
		mock.ExpectQuery("SELECT status, EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"status", "exists"}).AddRow("pending", false))
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE vehicle_id").
			WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(
				"res-1", "veh-1", "cus-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "in_city",
				false, false, false, 20000, "pending", false, "", "agent-7", now, now))
		mock.ExpectExec("UPDATE reservations SET start_date").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Update(ctx, res, domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationRepository_Transition(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewReservationRepository(db)

	t.Run("Success", func(t *testing.T) {
		res := testReservation(t)
		res.Status = domain.ReservationStatusCancelled

		mock.ExpectExec("UPDATE reservations SET status=(.+) AND NOT EXISTS").
			WithArgs("cancelled", false, sqlmock.AnyArg(), "res-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Transition(ctx, res, domain.ReservationStatusPending, domain.ReservationStatusConfirmed))
	})

	t.Run("Lost race", func(t *testing.T) {
		res := testReservation(t)
		res.Status = domain.ReservationStatusCancelled
		now := time.Now()

		mock.ExpectExec("UPDATE reservations SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id").
			WithArgs("res-1").
			WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(
				"res-1", "veh-1", "cus-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), "in_city",
				false, false, false, 30000, "confirmed", false, "", "agent-7", now, now))

		err := repo.Transition(ctx, res, domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
		assert.ErrorIs(t, err, domain.ErrPrecondition)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListByVehicle(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM reservations WHERE vehicle_id").
		WithArgs("veh-1", "confirmed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE vehicle_id (.+) LIMIT").
		WithArgs("veh-1", "confirmed", int32(10), int32(10)).
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(
			"res-1", "veh-1", "cus-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), "out_of_city",
			true, true, false, 30000, "confirmed", true, "", "agent-7", now, now))

	list, count, err := repo.ListByVehicle(ctx, "veh-1", domain.ReservationStatusConfirmed, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	require.Len(t, list, 1)
	assert.Equal(t, domain.LocationOutOfCity, list[0].Location)
	assert.Equal(t, "2024-03-03", list[0].EndDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandoverRepository_CreateCheckout(t *testing.T) {
	ctx := context.Background()
	checkout := func() *domain.Checkout {
		return &domain.Checkout{
			ID:              "co-1",
			ReservationID:   "res-1",
			VehicleID:       "veh-1",
			DepartureAt:     time.Date(2024, 3, 1, 8, 0, 0, 0, calendar.Location),
			StartOdometerKm: 12000,
			DeliveredTo:     "Ana",
		}
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewHandoverRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(true))
		mock.ExpectQuery("SELECT status, EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"status", "exists"}).AddRow("confirmed", false))
		mock.ExpectExec("INSERT INTO checkouts").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c := checkout()
		require.NoError(t, repo.CreateCheckout(ctx, c))
		assert.False(t, c.CreatedOn.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second checkout", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewHandoverRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(false))
		mock.ExpectQuery("SELECT status, EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"status", "exists"}).AddRow("confirmed", true))
		mock.ExpectRollback()

		err := repo.CreateCheckout(ctx, checkout())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.ErrorIs(t, err, domain.ErrPrecondition)
	})

	t.Run("Vehicle out on another rental", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewHandoverRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(false))
		mock.ExpectQuery("SELECT status, EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"status", "exists"}).AddRow("confirmed", false))
		mock.ExpectRollback()

		err := repo.CreateCheckout(ctx, checkout())
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("Unique violation from a racing session", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewHandoverRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(true))
		mock.ExpectQuery("SELECT status, EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"status", "exists"}).AddRow("confirmed", false))
		mock.ExpectExec("INSERT INTO checkouts").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "checkouts_reservation_id_key"})
		mock.ExpectRollback()

		err := repo.CreateCheckout(ctx, checkout())
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "checkout is already recorded")
	})
}

func TestHandoverRepository_CreateCheckin(t *testing.T) {
	ctx := context.Background()

	t.Run("Without checkout", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewHandoverRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS (.+) FROM checkouts co").
			WithArgs("res-1").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.CreateCheckin(ctx, &domain.Checkin{ID: "ci-1", ReservationID: "res-1"})
		require.ErrorIs(t, err, domain.ErrPrecondition)
		assert.Contains(t, err.Error(), "no checkout")
	})

	t.Run("Twice", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewHandoverRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS (.+) FROM checkouts co").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.CreateCheckin(ctx, &domain.Checkin{ID: "ci-2", ReservationID: "res-1"})
		assert.ErrorIs(t, err, domain.ErrPrecondition)
	})

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewHandoverRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS (.+) FROM checkouts co").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("INSERT INTO checkins").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.CreateCheckin(ctx, &domain.Checkin{ID: "ci-1", ReservationID: "res-1", ReturnedAt: time.Now(), ExtraDays: 1})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHandoverRepository_FindCheckout(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewHandoverRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM checkouts WHERE reservation_id").
		WithArgs("res-1").
		WillReturnError(sql.ErrNoRows)

	c, err := repo.FindCheckout(ctx, "res-1")
	assert.NoError(t, err)
	assert.Nil(t, c)

	departure := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM checkouts WHERE reservation_id").
		WithArgs("res-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "vehicle_id", "departure_at", "start_odometer_km", "delivered_to", "notes", "created_by", "created_on"}).
			AddRow("co-2", "res-2", "veh-1", departure, 500, "Ana", "", "agent-7", departure))

	c, err = repo.FindCheckout(ctx, "res-2")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(500), c.StartOdometerKm)
	assert.True(t, c.DepartureAt.Equal(departure))
}

func TestVehicleRepository_SetAvailability(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewVehicleRepository(db)

	mock.ExpectExec("UPDATE vehicles SET available").
		WithArgs(false, sqlmock.AnyArg(), "veh-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SetAvailability(ctx, "veh-1", false))

	mock.ExpectExec("UPDATE vehicles SET available").
		WithArgs(true, sqlmock.AnyArg(), "veh-x").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetAvailability(ctx, "veh-x", true), domain.ErrNotFound)

	mock.ExpectExec("UPDATE vehicles SET available").
		WillReturnError(errors.New("connection reset"))
	err := repo.SetAvailability(ctx, "veh-1", true)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestReservationRepository_ListOutEndingBy(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	res := testReservation(t)

	mock.ExpectQuery(`WHERE ci.id IS NULL AND r.end_date <= \$1`).
		WithArgs(mustDate(t, "2024-03-03")).
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(
			res.ID, res.VehicleID, res.CustomerID, "2024-03-01", "2024-03-03", "in_city",
			false, false, false, res.TotalCents, "confirmed", true, "", "agent-7", time.Now(), time.Now()))

	out, err := repo.ListOutEndingBy(context.Background(), mustDate(t, "2024-03-03"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2024-03-03", out[0].EndDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleRepository_RefreshAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("Checkout committed before the refresh", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewVehicleRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").WithArgs("veh-1").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(false))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("veh-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectCommit()

		available, changed, err := repo.RefreshAvailability(ctx, "veh-1")
		require.NoError(t, err)
		assert.False(t, available)
		assert.False(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Flag left behind by a lost write", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewVehicleRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").WithArgs("veh-1").
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(false))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("veh-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("UPDATE vehicles SET available").WithArgs(true, sqlmock.AnyArg(), "veh-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		available, changed, err := repo.RefreshAvailability(ctx, "veh-1")
		require.NoError(t, err)
		assert.True(t, available)
		assert.True(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown vehicle", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewVehicleRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT available FROM vehicles").WithArgs("veh-x").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, _, err := repo.RefreshAvailability(ctx, "veh-x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCustomerRepository_Search(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM customers WHERE").
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM customers WHERE (.+) LIMIT").
		WithArgs("%ana%", int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "email", "document_number", "address", "created_by", "created_on", "updated_on"}).
			AddRow("cus-1", "Ana Lopes", "+244900000000", "ana@example.com", "LA123", "Luanda", "agent-7", now, now))

	list, count, err := repo.Search(ctx, " ana ", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Lopes", list[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion", &pq.Error{Code: "23P01"}, domain.ErrConflict},
		{"unique", &pq.Error{Code: "23505", Constraint: "checkins_reservation_id_key"}, domain.ErrConflict},
		{"checkin without checkout", &pq.Error{Code: "23503", Constraint: "checkins_reservation_id_fkey"}, domain.ErrPrecondition},
		{"foreign key", &pq.Error{Code: "23503", Constraint: "reservations_vehicle_id_fkey"}, domain.ErrValidation},
		{"check", &pq.Error{Code: "23514"}, domain.ErrValidation},
		{"other", errors.New("boom"), domain.ErrPersistence},
		{"domain passthrough", domain.NotFound("vehicle", "v"), domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("op", tt.err), tt.want)
		})
	}
	assert.NoError(t, mapError("op", nil))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "r.id, r.name", prefixed("r", "id,\n\tname"))
}
