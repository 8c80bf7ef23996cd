package supabase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/postgrest-go"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

// fakeREST answers PostgREST calls by "METHOD /table" with canned bodies.
type fakeREST struct {
	mu       sync.Mutex
	routes   map[string]response
	requests []string
	bodies   map[string]string
}

type response struct {
	status int
	body   string
}

func newFakeREST(t *testing.T, routes map[string]response) (*fakeREST, Client) {
	t.Helper()
	f := &fakeREST{routes: routes, bodies: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, postgrest.NewClient(srv.URL, "public", nil)
}

func (f *fakeREST) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, key+"?"+r.URL.RawQuery)
	f.bodies[key] = string(body)
	resp, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		resp = response{status: http.StatusOK, body: "[]"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Range", "0-0/1")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func testReservation(t *testing.T) *domain.Reservation {
	t.Helper()
	start, err := calendar.ParseDate("2024-03-01")
	require.NoError(t, err)
	end, err := calendar.ParseDate("2024-03-03")
	require.NoError(t, err)
	return &domain.Reservation{
		ID: "res-1", VehicleID: "veh-1", CustomerID: "cus-1",
		StartDate: start, EndDate: end,
		Location: domain.LocationInCity, TotalCents: 30000,
		Status: domain.ReservationStatusPending,
	}
}

const storedReservation = `[{"id":"res-0","vehicle_id":"veh-1","customer_id":"cus-9",
	"start_date":"2024-03-03","end_date":"2024-03-06","location":"in_city","status":"confirmed",
	"total_cents":40000,"created_on":"2024-02-01T10:00:00+00:00","updated_on":"2024-02-01T10:00:00+00:00"}]`

func TestReservationRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		fake, client := newFakeREST(t, map[string]response{
			"POST /reservations": {status: http.StatusCreated, body: ""},
		})
		repo := NewReservationRepository(client)

		require.NoError(t, repo.Create(ctx, testReservation(t)))
		assert.Contains(t, fake.bodies["POST /reservations"], `"start_date":"2024-03-01"`)
		assert.Contains(t, fake.bodies["POST /reservations"], `"status":"pending"`)
		require.NotEmpty(t, fake.requests)
		assert.Contains(t, fake.requests[0], "vehicle_id=eq.veh-1")
	})

	t.Run("Overlap found at write time", func(t *testing.T) {
		_, client := newFakeREST(t, map[string]response{
			"GET /reservations": {status: http.StatusOK, body: storedReservation},
		})
		repo := NewReservationRepository(client)

		err := repo.Create(ctx, testReservation(t))
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "cus-9", conflict.Conflicting.CustomerID)
	})

	t.Run("Exclusion constraint", func(t *testing.T) {
		_, client := newFakeREST(t, map[string]response{
			"POST /reservations": {status: http.StatusConflict, body: `{"code":"23P01","message":"conflicting key value violates exclusion constraint \"reservations_no_overlap\""}`},
		})
		repo := NewReservationRepository(client)

		assert.ErrorIs(t, repo.Create(ctx, testReservation(t)), domain.ErrConflict)
	})
}

func TestReservationRepository_TransitionAfterCheckout(t *testing.T) {
	_, client := newFakeREST(t, map[string]response{
		"GET /checkouts": {status: http.StatusOK, body: `[{"id":"co-1","reservation_id":"res-1","vehicle_id":"veh-1","departure_at":"2024-03-01T08:00:00+01:00","start_odometer_km":100}]`},
	})
	repo := NewReservationRepository(client)

	res := testReservation(t)
	res.Status = domain.ReservationStatusCancelled
	err := repo.Transition(context.Background(), res, domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestHandoverRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Checkin without checkout", func(t *testing.T) {
		_, client := newFakeREST(t, nil)
		repo := NewHandoverRepository(client)

		err := repo.CreateCheckin(ctx, &domain.Checkin{ID: "ci-1", ReservationID: "res-1"})
		assert.ErrorIs(t, err, domain.ErrPrecondition)
	})

	t.Run("Checkout on unavailable vehicle", func(t *testing.T) {
		_, client := newFakeREST(t, map[string]response{
			"GET /vehicles": {status: http.StatusOK, body: `[{"id":"veh-1","plate":"LD-01-23-AB","available":false}]`},
		})
		repo := NewHandoverRepository(client)

		err := repo.CreateCheckout(ctx, &domain.Checkout{ID: "co-1", ReservationID: "res-1", VehicleID: "veh-1"})
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("Duplicate checkout from racing session", func(t *testing.T) {
		_, client := newFakeREST(t, map[string]response{
			"GET /vehicles":   {status: http.StatusOK, body: `[{"id":"veh-1","plate":"LD-01-23-AB","available":true}]`},
			"POST /checkouts": {status: http.StatusConflict, body: `{"code":"23505","message":"duplicate key value violates unique constraint \"checkouts_reservation_id_key\""}`},
		})
		repo := NewHandoverRepository(client)

		err := repo.CreateCheckout(ctx, &domain.Checkout{ID: "co-1", ReservationID: "res-1", VehicleID: "veh-1"})
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "checkout is already recorded")
	})

	t.Run("Open checkouts", func(t *testing.T) {
		_, client := newFakeREST(t, map[string]response{
			"GET /checkouts": {status: http.StatusOK, body: `[{"id":"co-1","reservation_id":"res-1","vehicle_id":"veh-1"},{"id":"co-2","reservation_id":"res-2","vehicle_id":"veh-2"}]`},
			"GET /checkins":  {status: http.StatusOK, body: `[{"reservation_id":"res-1"}]`},
		})
		repo := NewHandoverRepository(client)

		open, err := repo.ListOpenCheckouts(ctx)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, "veh-2", open[0].VehicleID)
	})
}

func TestVehicleRepository_GetByID(t *testing.T) {
	_, client := newFakeREST(t, map[string]response{
		"GET /vehicles": {status: http.StatusOK, body: `[{"id":"veh-1","plate":"LD-01-23-AB","in_city_without_driver_cents":10000,"out_of_city_with_driver_cents":18000,"daily_allowance_km":200,"excess_price_per_km_cents":150,"available":true}]`},
	})
	repo := NewVehicleRepository(client)

	v, err := repo.GetByID(context.Background(), "veh-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), v.Rates.InCityWithoutDriverCents)
	assert.Equal(t, int64(18000), v.Rates.OutOfCityWithDriverCents)
	assert.True(t, v.HasDistancePolicy())
}

func TestVehicleRepository_NotFound(t *testing.T) {
	_, client := newFakeREST(t, nil)
	repo := NewVehicleRepository(client)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationRepository_ListOutEndingBy(t *testing.T) {
	f, client := newFakeREST(t, map[string]response{
		"GET /checkouts":    {status: http.StatusOK, body: `[{"id":"co-1","reservation_id":"res-1","vehicle_id":"veh-1"}]`},
		"GET /reservations": {status: http.StatusOK, body: `[{"id":"res-1","vehicle_id":"veh-1","start_date":"2024-03-01","end_date":"2024-03-05","status":"confirmed"}]`},
	})
	repo := NewReservationRepository(client)

	out, err := repo.ListOutEndingBy(context.Background(), calendar.Date{Year: 2024, Month: 3, Day: 5})
	require.NoError(t, err)
	require.Len(t, out, 1)

	var query string
	for _, req := range f.requests {
		if strings.HasPrefix(req, "GET /reservations") {
			query = req
		}
	}
	assert.Contains(t, query, "end_date=lte.2024-03-05")
}

func TestVehicleRepository_RefreshAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("Open checkout keeps the vehicle unavailable", func(t *testing.T) {
		f, client := newFakeREST(t, map[string]response{
			"GET /vehicles":  {status: http.StatusOK, body: `[{"id":"veh-1","available":false}]`},
			"GET /checkouts": {status: http.StatusOK, body: `[{"reservation_id":"res-9"}]`},
			"GET /checkins":  {status: http.StatusOK, body: `[]`},
		})
		repo := NewVehicleRepository(client)

		available, changed, err := repo.RefreshAvailability(ctx, "veh-1")
		require.NoError(t, err)
		assert.False(t, available)
		assert.False(t, changed)
		for _, req := range f.requests {
			assert.False(t, strings.HasPrefix(req, "PATCH"), req)
		}
	})

	t.Run("Returned vehicle is released", func(t *testing.T) {
		f, client := newFakeREST(t, map[string]response{
			"GET /vehicles":   {status: http.StatusOK, body: `[{"id":"veh-1","available":false}]`},
			"GET /checkouts":  {status: http.StatusOK, body: `[{"reservation_id":"res-9"}]`},
			"GET /checkins":   {status: http.StatusOK, body: `[{"reservation_id":"res-9"}]`},
			"PATCH /vehicles": {status: http.StatusOK, body: `[{"id":"veh-1","available":true}]`},
		})
		repo := NewVehicleRepository(client)

		available, changed, err := repo.RefreshAvailability(ctx, "veh-1")
		require.NoError(t, err)
		assert.True(t, available)
		assert.True(t, changed)

		var patch string
		for _, req := range f.requests {
			if strings.HasPrefix(req, "PATCH /vehicles") {
				patch = req
			}
		}
		assert.Contains(t, patch, "available=eq.false")
	})
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError("op", errors.New("(23P01) conflicting key value")), domain.ErrConflict)
	assert.ErrorIs(t, mapError("op", errors.New(`(23505) duplicate key value violates unique constraint "checkins_reservation_id_key"`)), domain.ErrConflict)
	assert.ErrorIs(t, mapError("op", errors.New(`(23503) insert violates foreign key constraint "checkins_reservation_id_fkey"`)), domain.ErrPrecondition)
	assert.ErrorIs(t, mapError("op", errors.New("(23514) new row violates check constraint")), domain.ErrValidation)
	assert.ErrorIs(t, mapError("op", errors.New("dial tcp: connection refused")), domain.ErrPersistence)
	assert.ErrorIs(t, mapError("op", domain.NotFound("vehicle", "v")), domain.ErrNotFound)
	assert.NoError(t, mapError("op", nil))
}

func TestSanitizeSearch(t *testing.T) {
	assert.Equal(t, "ana lopes", sanitizeSearch(" ana, (lopes)* "))
	assert.True(t, strings.HasPrefix(sanitizeSearch("joão"), "jo"))
}
