package jobs

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

// The jobs only touch a few methods of each store; the embedded interfaces
// stay nil so an unexpected call panics and is caught by runWithRecovery.

type mockVehicles struct {
	repository.VehicleRepository
	mock.Mock
}

func (m *mockVehicles) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *mockVehicles) List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	args := m.Called(ctx, onlyAvailable, page, pageSize)
	return args.Get(0).([]domain.Vehicle), args.Get(1).(int32), args.Error(2)
}
func (m *mockVehicles) SetAvailability(ctx context.Context, id string, available bool) error {
	return m.Called(ctx, id, available).Error(0)
}
func (m *mockVehicles) RefreshAvailability(ctx context.Context, id string) (bool, bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

type mockCustomers struct {
	repository.CustomerRepository
	mock.Mock
}

func (m *mockCustomers) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type mockReservations struct {
	repository.ReservationRepository
	mock.Mock
}

func (m *mockReservations) Transition(ctx context.Context, r *domain.Reservation, from ...domain.ReservationStatus) error {
	return m.Called(ctx, r, from).Error(0)
}
func (m *mockReservations) ListOutEndingBy(ctx context.Context, day calendar.Date) ([]domain.Reservation, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *mockReservations) ListCheckedInNotCompleted(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type mockHandovers struct {
	repository.HandoverRepository
	mock.Mock
}

func (m *mockHandovers) FindCheckout(ctx context.Context, reservationID string) (*domain.Checkout, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Checkout), args.Error(1)
}
func (m *mockHandovers) ListOpenCheckouts(ctx context.Context) ([]domain.Checkout, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Checkout), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendReturnReceipt(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, checkin *domain.Checkin) error {
	return m.Called(ctx, customer, vehicle, r, checkin).Error(0)
}
func (m *mockNotifier) SendOverdueReminder(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, expectedReturn time.Time) error {
	return m.Called(ctx, customer, vehicle, r, expectedReturn).Error(0)
}
