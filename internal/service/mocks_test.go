package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
)

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}
func (m *MockVehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}
func (m *MockVehicleRepo) List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	args := m.Called(ctx, onlyAvailable, page, pageSize)
	return args.Get(0).([]domain.Vehicle), args.Get(1).(int32), args.Error(2)
}
func (m *MockVehicleRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}
func (m *MockVehicleRepo) RefreshAvailability(ctx context.Context, id string) (bool, bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCustomerRepo) Search(ctx context.Context, query string, page, pageSize int32) ([]domain.Customer, int32, error) {
	args := m.Called(ctx, query, page, pageSize)
	return args.Get(0).([]domain.Customer), args.Get(1).(int32), args.Error(2)
}

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) Update(ctx context.Context, r *domain.Reservation, from ...domain.ReservationStatus) error {
	args := m.Called(ctx, r, from)
	return args.Error(0)
}
func (m *MockReservationRepo) Transition(ctx context.Context, r *domain.Reservation, from ...domain.ReservationStatus) error {
	args := m.Called(ctx, r, from)
	return args.Error(0)
}
func (m *MockReservationRepo) ListActiveByVehicle(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListByVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, vehicleID, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListOutEndingBy(ctx context.Context, day calendar.Date) ([]domain.Reservation, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListCheckedInNotCompleted(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

// MockHandoverRepo
type MockHandoverRepo struct {
	mock.Mock
}

func (m *MockHandoverRepo) CreateCheckout(ctx context.Context, c *domain.Checkout) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockHandoverRepo) FindCheckout(ctx context.Context, reservationID string) (*domain.Checkout, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Checkout), args.Error(1)
}
func (m *MockHandoverRepo) CreateCheckin(ctx context.Context, c *domain.Checkin) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockHandoverRepo) FindCheckin(ctx context.Context, reservationID string) (*domain.Checkin, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Checkin), args.Error(1)
}
func (m *MockHandoverRepo) ListOpenCheckouts(ctx context.Context) ([]domain.Checkout, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Checkout), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReturnReceipt(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, checkin *domain.Checkin) error {
	args := m.Called(ctx, customer, vehicle, r, checkin)
	return args.Error(0)
}
func (m *MockNotifier) SendOverdueReminder(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, expectedReturn time.Time) error {
	args := m.Called(ctx, customer, vehicle, r, expectedReturn)
	return args.Error(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, e Email) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
