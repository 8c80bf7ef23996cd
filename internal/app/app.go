// Package app wires configuration into stores and notifiers for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/joelcalolo/MoFleet-sub000/internal/config"
	"github.com/joelcalolo/MoFleet-sub000/internal/jobs"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository/postgres"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository/supabase"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

// Backend is the configured persistence backend.
type Backend struct {
	Stores jobs.Stores
	// Health is nil when the backend cannot be probed.
	Health  func(ctx context.Context) error
	Migrate func(ctx context.Context) error
	Close   func() error
}

// OpenBackend connects to the store selected by cfg.Store.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendSupabase:
		logger.Info("Using Supabase store", "url", cfg.Supabase.URL)
		client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		if err != nil {
			return nil, err
		}
		store := supabase.NewStore(client)
		return &Backend{
			Stores: jobs.Stores{
				Vehicles:     store.VehicleRepository,
				Customers:    store.CustomerRepository,
				Reservations: store.ReservationRepository,
				Handovers:    store.HandoverRepository,
			},
			Migrate: func(context.Context) error {
				return fmt.Errorf("migrations are not supported for the supabase backend; apply schema.sql in the project")
			},
			Close: func() error { return nil },
		}, nil
	default:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established")
		store := postgres.NewStore(db)
		return &Backend{
			Stores: jobs.Stores{
				Vehicles:     store.VehicleRepository,
				Customers:    store.CustomerRepository,
				Reservations: store.ReservationRepository,
				Handovers:    store.HandoverRepository,
			},
			Health:  store.Ping,
			Migrate: store.Migrate,
			Close:   store.Close,
		}, nil
	}
}

// NewNotifier picks the mailer for cfg.Email.Provider. With email disabled the
// messages are only logged.
func NewNotifier(cfg *config.Config) service.Notifier {
	email := cfg.Email
	switch email.Provider {
	case config.EmailSMTP:
		logger.Info("SMTP configuration", "host", email.SMTP.Host, "port", email.SMTP.Port)
		return service.NewEmailNotifier(service.NewSMTPMailer(email.SMTP.Host, email.SMTP.Port, email.SMTP.User, email.SMTP.Password, email.From))
	case config.EmailSendGrid:
		logger.Info("Using SendGrid for email")
		return service.NewEmailNotifier(service.NewSendGridMailer(email.SendGridAPIKey, email.From, email.FromName))
	default:
		logger.Info("Email disabled, notifications are logged only")
		return service.NewEmailNotifier(service.NewLogMailer())
	}
}
