package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo}
}

// CreateVehicle registers a vehicle; new vehicles start available.
func (s *vehicleService) CreateVehicle(ctx context.Context, actor domain.ActorID, v *domain.Vehicle) error {
	logger.EnterMethod("vehicleService.CreateVehicle", "actor", actor, "plate", v.Plate)
	if err := v.Validate(); err != nil {
		return err
	}
	v.ID = uuid.NewString()
	v.Available = true
	v.CreatedBy = actor
	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		logger.ExitMethodWithError("vehicleService.CreateVehicle", err, "plate", v.Plate)
		return err
	}
	logger.ExitMethod("vehicleService.CreateVehicle", "vehicleID", v.ID)
	return nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *vehicleService) ListVehicles(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	return s.vehicleRepo.List(ctx, onlyAvailable, page, pageSize)
}

// UpdateVehicle edits the descriptive fields and rates. Availability belongs to
// the handover lifecycle and is carried over from the stored row.
func (s *vehicleService) UpdateVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	logger.EnterMethod("vehicleService.UpdateVehicle", "vehicleID", v.ID)
	existing, err := s.vehicleRepo.GetByID(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	existing.Plate = v.Plate
	existing.Brand = v.Brand
	existing.Model = v.Model
	existing.Year = v.Year
	existing.Rates = v.Rates
	existing.DeliveryFeeCents = v.DeliveryFeeCents
	existing.PickupFeeCents = v.PickupFeeCents
	existing.DailyAllowanceKm = v.DailyAllowanceKm
	existing.ExcessPricePerKmCents = v.ExcessPricePerKmCents

	if err := s.vehicleRepo.Update(ctx, existing); err != nil {
		logger.ExitMethodWithError("vehicleService.UpdateVehicle", err, "vehicleID", v.ID)
		return nil, err
	}
	logger.ExitMethod("vehicleService.UpdateVehicle", "vehicleID", v.ID)
	return existing, nil
}
