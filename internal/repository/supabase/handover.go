package supabase

import (
	"context"
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

type handoverRepository struct {
	client Client
}

func NewHandoverRepository(client Client) repository.HandoverRepository {
	return &handoverRepository{client: client}
}

// CreateCheckout re-reads the vehicle flag and the existing checkout right before
// the insert; the unique reservation_id constraint settles a concurrent session.
func (r *handoverRepository) CreateCheckout(ctx context.Context, c *domain.Checkout) error {
	logger.EnterMethod("supabase.handoverRepository.CreateCheckout", "reservationID", c.ReservationID)

	existing, err := r.FindCheckout(ctx, c.ReservationID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.NewPreconditionError("checkout", "vehicle out", "a checkout is already recorded for this reservation")
	}
	vehicles := NewVehicleRepository(r.client)
	v, err := vehicles.GetByID(ctx, c.VehicleID)
	if err != nil {
		return err
	}
	if !v.Available {
		return &domain.ConflictError{Reason: "vehicle is not available for handover"}
	}

	c.CreatedOn = time.Now().UTC()
	if _, err := run("create checkout", tableCheckouts, r.client.From(tableCheckouts).Insert(c, false, "", "minimal", ""), nil); err != nil {
		logger.ExitMethodWithError("supabase.handoverRepository.CreateCheckout", err)
		return err
	}

	logger.ExitMethod("supabase.handoverRepository.CreateCheckout", "checkoutID", c.ID)
	return nil
}

func (r *handoverRepository) FindCheckout(ctx context.Context, reservationID string) (*domain.Checkout, error) {
	var rows []domain.Checkout
	q := r.client.From(tableCheckouts).Select("*", "", false).Eq("reservation_id", reservationID).Limit(1, "")
	if _, err := run("find checkout", tableCheckouts, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *handoverRepository) CreateCheckin(ctx context.Context, c *domain.Checkin) error {
	logger.EnterMethod("supabase.handoverRepository.CreateCheckin", "reservationID", c.ReservationID)

	checkout, err := r.FindCheckout(ctx, c.ReservationID)
	if err != nil {
		return err
	}
	if checkout == nil {
		return domain.NewPreconditionError("checkin", "awaiting handover", "no checkout recorded for this reservation")
	}
	existing, err := r.FindCheckin(ctx, c.ReservationID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.NewPreconditionError("checkin", "completed", "a checkin is already recorded for this reservation")
	}

	c.CreatedOn = time.Now().UTC()
	if _, err := run("create checkin", tableCheckins, r.client.From(tableCheckins).Insert(c, false, "", "minimal", ""), nil); err != nil {
		logger.ExitMethodWithError("supabase.handoverRepository.CreateCheckin", err)
		return err
	}

	logger.ExitMethod("supabase.handoverRepository.CreateCheckin", "checkinID", c.ID)
	return nil
}

func (r *handoverRepository) FindCheckin(ctx context.Context, reservationID string) (*domain.Checkin, error) {
	var rows []domain.Checkin
	q := r.client.From(tableCheckins).Select("*", "", false).Eq("reservation_id", reservationID).Limit(1, "")
	if _, err := run("find checkin", tableCheckins, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *handoverRepository) ListOpenCheckouts(ctx context.Context) ([]domain.Checkout, error) {
	var checkouts []domain.Checkout
	if _, err := run("list checkouts", tableCheckouts, r.client.From(tableCheckouts).Select("*", "", false), &checkouts); err != nil {
		return nil, err
	}
	var checkins []struct {
		ReservationID string `json:"reservation_id"`
	}
	if _, err := run("list checkins", tableCheckins, r.client.From(tableCheckins).Select("reservation_id", "", false), &checkins); err != nil {
		return nil, err
	}
	closed := make(map[string]bool, len(checkins))
	for _, c := range checkins {
		closed[c.ReservationID] = true
	}
	open := checkouts[:0]
	for _, c := range checkouts {
		if !closed[c.ReservationID] {
			open = append(open, c)
		}
	}
	return open, nil
}
