package jobs

import (
	"context"
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

// SendOverdueReminders emails customers whose vehicle is still out after the
// expected return moment.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := jr.now()

		candidates, err := jr.stores.Reservations.ListOutEndingBy(ctx, calendar.ToCivilDate(now))
		if err != nil {
			logger.Error("Failed to list overdue reservations", "error", err)
			return
		}

		sent := 0
		for i := range candidates {
			r := &candidates[i]
			co, err := jr.stores.Handovers.FindCheckout(ctx, r.ID)
			if err != nil {
				logger.Error("Failed to load checkout", "reservation_id", r.ID, "error", err)
				continue
			}
			if co == nil {
				continue
			}
			expected := service.ExpectedReturn(r, co)
			if !now.After(expected) {
				continue
			}
			if jr.remind(ctx, r, expected) {
				sent++
			}
		}
		logger.Info("Overdue reminders processed", "sent", sent, "candidates", len(candidates))
	})
}

func (jr *JobRunner) remind(ctx context.Context, r *domain.Reservation, expected time.Time) bool {
	overdueDays := calendar.ElapsedDays(expected, jr.now())
	if jr.notifier == nil {
		logger.Warn("Vehicle overdue", "reservation_id", r.ID, "vehicle_id", r.VehicleID, "expected_return", expected, "days", overdueDays)
		return false
	}

	customer, err := jr.stores.Customers.GetByID(ctx, r.CustomerID)
	if err != nil {
		logger.Error("Failed to load customer", "reservation_id", r.ID, "customer_id", r.CustomerID, "error", err)
		return false
	}
	if customer.Email == "" {
		logger.Warn("Customer has no email, overdue reminder skipped", "reservation_id", r.ID, "customer_id", customer.ID)
		return false
	}
	vehicle, err := jr.stores.Vehicles.GetByID(ctx, r.VehicleID)
	if err != nil {
		logger.Error("Failed to load vehicle", "reservation_id", r.ID, "vehicle_id", r.VehicleID, "error", err)
		return false
	}

	if err := jr.notifier.SendOverdueReminder(ctx, customer, vehicle, r, expected); err != nil {
		logger.Error("Failed to send overdue reminder", "reservation_id", r.ID, "error", err)
		return false
	}
	logger.Debug("Sent overdue reminder", "reservation_id", r.ID, "customer_id", customer.ID, "days", overdueDays)
	return true
}
