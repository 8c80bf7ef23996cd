package grpc

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joelcalolo/MoFleet-sub000/internal/availability"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Quote(ctx context.Context, req service.QuoteRequest) (*service.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Quote), args.Error(1)
}
func (m *MockReservationService) CheckAvailability(ctx context.Context, c availability.Candidate) (availability.Result, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(availability.Result), args.Error(1)
}
func (m *MockReservationService) CreateReservation(ctx context.Context, actor domain.ActorID, req service.BookingRequest) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) UpdateReservation(ctx context.Context, actor domain.ActorID, id string, req service.BookingRequest) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) ConfirmReservation(ctx context.Context, actor domain.ActorID, id string, depositPaid bool) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, id, depositPaid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) CancelReservation(ctx context.Context, actor domain.ActorID, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) Checkout(ctx context.Context, actor domain.ActorID, req service.CheckoutRequest) (*domain.Checkout, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Checkout), args.Error(1)
}
func (m *MockReservationService) Checkin(ctx context.Context, actor domain.ActorID, req service.CheckinRequest) (*service.CheckinResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckinResult), args.Error(1)
}
func (m *MockReservationService) GetReservation(ctx context.Context, id string) (*service.ReservationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReservationDetail), args.Error(1)
}
func (m *MockReservationService) ListVehicleReservations(ctx context.Context, vehicleID string, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, vehicleID, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}

type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) CreateVehicle(ctx context.Context, actor domain.ActorID, v *domain.Vehicle) error {
	args := m.Called(ctx, actor, v)
	return args.Error(0)
}
func (m *MockVehicleService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleService) ListVehicles(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	args := m.Called(ctx, onlyAvailable, page, pageSize)
	return args.Get(0).([]domain.Vehicle), args.Get(1).(int32), args.Error(2)
}
func (m *MockVehicleService) UpdateVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, actor domain.ActorID, c *domain.Customer) error {
	args := m.Called(ctx, actor, c)
	return args.Error(0)
}
func (m *MockCustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) SearchCustomers(ctx context.Context, query string, page, pageSize int32) ([]domain.Customer, int32, error) {
	args := m.Called(ctx, query, page, pageSize)
	return args.Get(0).([]domain.Customer), args.Get(1).(int32), args.Error(2)
}
