package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
	repository.VehicleRepository
	repository.CustomerRepository
	repository.ReservationRepository
	repository.HandoverRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		VehicleRepository:     NewVehicleRepository(db),
		CustomerRepository:    NewCustomerRepository(db),
		ReservationRepository: NewReservationRepository(db),
		HandoverRepository:    NewHandoverRepository(db),
	}
}

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	logger.DatabaseCall("migrate", "schema.sql")
	_, err := s.db.ExecContext(ctx, schema)
	logger.DatabaseResult("migrate", 0, err)
	if err != nil {
		return domain.NewPersistenceError("migrate", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// mapError turns driver errors into domain errors. Constraint violations raised by
// a concurrent writer become conflicts.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgerrcode.ExclusionViolation:
			return &domain.ConflictError{Reason: "another reservation already holds these dates for the vehicle"}
		case pgerrcode.UniqueViolation:
			return &domain.ConflictError{Reason: uniqueReason(pqErr.Constraint)}
		case pgerrcode.ForeignKeyViolation:
			if pqErr.Constraint == "checkins_reservation_id_fkey" {
				return domain.NewPreconditionError("checkin", "awaiting handover", "no checkout recorded for this reservation")
			}
			return domain.NewValidationError("", "referenced record does not exist: "+pqErr.Constraint)
		case pgerrcode.CheckViolation:
			return domain.NewValidationError("", "value rejected by constraint "+pqErr.Constraint)
		}
	}
	return domain.NewPersistenceError(op, err)
}

func uniqueReason(constraint string) string {
	switch constraint {
	case "checkouts_reservation_id_key":
		return "a checkout is already recorded for this reservation"
	case "checkins_reservation_id_key":
		return "a checkin is already recorded for this reservation"
	case "vehicles_plate_key":
		return "a vehicle with this plate already exists"
	default:
		return "duplicate record (" + constraint + ")"
	}
}

// withTx runs fn in a transaction and commits when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func pageOffset(page, pageSize int32) (int32, int32) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

// prefixed qualifies a column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
