package jobs

import (
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/config"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

const listPageSize = 100

// Stores holds the repositories the jobs read and repair.
type Stores struct {
	Vehicles     repository.VehicleRepository
	Customers    repository.CustomerRepository
	Reservations repository.ReservationRepository
	Handovers    repository.HandoverRepository
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	stores   Stores
	notifier service.Notifier
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner. notifier may be nil, in which case
// reminders are only logged.
func NewJobRunner(stores Stores, notifier service.Notifier, cfg *config.Config) *JobRunner {
	return &JobRunner{
		stores:   stores,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := jr.now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", jr.now().Sub(start))
}

// RunAll runs every job once, repair first.
func (jr *JobRunner) RunAll() {
	jr.SyncVehicleAvailability()
	jr.SendOverdueReminders()
}
