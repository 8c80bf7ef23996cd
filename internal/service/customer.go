package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) CreateCustomer(ctx context.Context, actor domain.ActorID, c *domain.Customer) error {
	normalize(c)
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = uuid.NewString()
	c.CreatedBy = actor
	return s.customerRepo.Create(ctx, c)
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	existing, err := s.customerRepo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	normalize(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	existing.Name = c.Name
	existing.Phone = c.Phone
	existing.Email = c.Email
	existing.DocumentNumber = c.DocumentNumber
	existing.Address = c.Address
	if err := s.customerRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *customerService) SearchCustomers(ctx context.Context, query string, page, pageSize int32) ([]domain.Customer, int32, error) {
	return s.customerRepo.Search(ctx, strings.TrimSpace(query), page, pageSize)
}

func normalize(c *domain.Customer) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.DocumentNumber = strings.TrimSpace(c.DocumentNumber)
}
