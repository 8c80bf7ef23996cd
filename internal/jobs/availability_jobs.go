package jobs

import (
	"context"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
)

// SyncVehicleAvailability repairs the secondary writes a checkout or checkin
// may have lost: the vehicle availability flag and the completed status.
func (jr *JobRunner) SyncVehicleAvailability() {
	jr.runWithRecovery("SyncVehicleAvailability", func() {
		ctx := context.Background()
		jr.completeCheckedIn(ctx)
		jr.syncAvailability(ctx)
	})
}

func (jr *JobRunner) completeCheckedIn(ctx context.Context) {
	pending, err := jr.stores.Reservations.ListCheckedInNotCompleted(ctx)
	if err != nil {
		logger.Error("Failed to list checked-in reservations", "error", err)
		return
	}

	completed := 0
	for i := range pending {
		r := pending[i]
		from := r.Status
		r.Status = domain.ReservationStatusCompleted
		err := jr.stores.Reservations.Transition(ctx, &r,
			domain.ReservationStatusPending, domain.ReservationStatusConfirmed, domain.ReservationStatusActive)
		if err != nil {
			logger.Error("Failed to complete reservation", "reservation_id", r.ID, "status", from, "error", err)
			continue
		}
		logger.Debug("Completed reservation", "reservation_id", r.ID, "status", from)
		completed++
	}
	logger.Info("Completed checked-in reservations", "count", completed, "found", len(pending))
}

func (jr *JobRunner) syncAvailability(ctx context.Context) {
	open, err := jr.stores.Handovers.ListOpenCheckouts(ctx)
	if err != nil {
		logger.Error("Failed to list open checkouts", "error", err)
		return
	}
	out := make(map[string]bool, len(open))
	for _, co := range open {
		out[co.VehicleID] = true
	}

	fixed := 0
	for page := int32(1); ; page++ {
		vehicles, total, err := jr.stores.Vehicles.List(ctx, false, page, listPageSize)
		if err != nil {
			logger.Error("Failed to list vehicles", "page", page, "error", err)
			return
		}
		for _, v := range vehicles {
			if v.Available == !out[v.ID] {
				continue
			}
			// The snapshot above may predate a checkout or checkin; the store
			// decides the flag from its current rows.
			available, changed, err := jr.stores.Vehicles.RefreshAvailability(ctx, v.ID)
			if err != nil {
				logger.Error("Failed to repair vehicle availability", "vehicle_id", v.ID, "error", err)
				continue
			}
			if !changed {
				logger.Debug("Vehicle availability already current", "vehicle_id", v.ID, "available", available)
				continue
			}
			logger.Warn("Repaired vehicle availability", "vehicle_id", v.ID, "plate", v.Plate, "available", available)
			fixed++
		}
		if len(vehicles) == 0 || page*listPageSize >= total {
			break
		}
	}
	logger.Info("Vehicle availability synced", "repaired", fixed, "out", len(out))
}
