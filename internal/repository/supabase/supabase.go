// Package supabase stores the fleet in a managed Supabase project through its
// PostgREST API. Race closure relies on the constraints in postgres/schema.sql,
// which the project must carry.
package supabase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

const (
	tableVehicles     = "vehicles"
	tableCustomers    = "customers"
	tableReservations = "reservations"
	tableCheckouts    = "checkouts"
	tableCheckins     = "checkins"
)

// Client is the part of the Supabase client the store uses. *supa.Client and
// *postgrest.Client both satisfy it.
type Client interface {
	From(table string) *postgrest.QueryBuilder
}

type Store struct {
	repository.VehicleRepository
	repository.CustomerRepository
	repository.ReservationRepository
	repository.HandoverRepository
}

func NewStore(client Client) *Store {
	return &Store{
		VehicleRepository:     NewVehicleRepository(client),
		CustomerRepository:    NewCustomerRepository(client),
		ReservationRepository: NewReservationRepository(client),
		HandoverRepository:    NewHandoverRepository(client),
	}
}

// NewClient builds a Supabase client authenticated with the service role key.
func NewClient(url, serviceKey string) (*supa.Client, error) {
	client, err := supa.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// PostgREST reports database errors as "(<sqlstate>) <message>".
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsDomainError(err) {
		return err
	}
	msg := err.Error()
	switch {
	case hasCode(msg, pgerrcode.ExclusionViolation):
		return &domain.ConflictError{Reason: "another reservation already holds these dates for the vehicle"}
	case hasCode(msg, pgerrcode.UniqueViolation):
		switch {
		case strings.Contains(msg, "checkouts_reservation_id_key"):
			return &domain.ConflictError{Reason: "a checkout is already recorded for this reservation"}
		case strings.Contains(msg, "checkins_reservation_id_key"):
			return &domain.ConflictError{Reason: "a checkin is already recorded for this reservation"}
		}
		return &domain.ConflictError{Reason: "duplicate record"}
	case hasCode(msg, pgerrcode.ForeignKeyViolation):
		if strings.Contains(msg, "checkins_reservation_id_fkey") {
			return domain.NewPreconditionError("checkin", "awaiting handover", "no checkout recorded for this reservation")
		}
		return domain.NewValidationError("", "referenced record does not exist")
	case hasCode(msg, pgerrcode.CheckViolation):
		return domain.NewValidationError("", "value rejected by a database constraint")
	}
	return domain.NewPersistenceError(op, err)
}

func hasCode(msg, code string) bool {
	return strings.HasPrefix(msg, "("+code+")")
}

// run executes a built query and decodes the JSON array it returns into out.
func run(op, table string, q *postgrest.FilterBuilder, out any) (int64, error) {
	logger.ExternalServiceCall("supabase", op, "table", table)
	data, count, err := q.Execute()
	if err == nil && out != nil {
		err = json.Unmarshal(data, out)
	}
	logger.ExternalServiceResult("supabase", op, err, "table", table, "count", count)
	if err != nil {
		return 0, mapError(op, err)
	}
	return count, nil
}

func pageRange(page, pageSize int32) (from, to int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	from = int((page - 1) * pageSize)
	return from, from + int(pageSize) - 1
}
