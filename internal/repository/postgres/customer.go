package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

const customerColumns = `id, name, phone, email, document_number, address, created_by, created_on, updated_on`

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	c := &domain.Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.DocumentNumber, &c.Address, &c.CreatedBy, &c.CreatedOn, &c.UpdatedOn); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	logger.EnterMethod("customerRepository.Create", "name", c.Name)

	query := `INSERT INTO customers (` + customerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Phone, c.Email, c.DocumentNumber, c.Address, c.CreatedBy, now, now)
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Create", err)
		return mapError("create customer", err)
	}
	c.CreatedOn, c.UpdatedOn = now, now

	logger.ExitMethod("customerRepository.Create", "customerID", c.ID)
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("customer", id)
	}
	if err != nil {
		return nil, mapError("get customer", err)
	}
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name=$1, phone=$2, email=$3, document_number=$4, address=$5, updated_on=$6 WHERE id=$7`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Phone, c.Email, c.DocumentNumber, c.Address, now, c.ID)
	if err == nil {
		err = expectOne(res, "customer", c.ID)
	}
	if err != nil {
		return mapError("update customer", err)
	}
	c.UpdatedOn = now
	return nil
}

// Search matches the query against name, phone, email and document number.
func (r *customerRepository) Search(ctx context.Context, query string, page, pageSize int32) ([]domain.Customer, int32, error) {
	limit, offset := pageOffset(page, pageSize)

	where := ""
	args := []any{}
	if q := strings.TrimSpace(query); q != "" {
		where = ` WHERE name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1 OR document_number ILIKE $1`
		args = append(args, "%"+q+"%")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM customers`+where, args...).Scan(&count); err != nil {
		return nil, 0, mapError("count customers", err)
	}

	sqlQuery := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY name`
	if len(args) == 0 {
		sqlQuery += ` LIMIT $1 OFFSET $2`
	} else {
		sqlQuery += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, mapError("search customers", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, mapError("search customers", err)
		}
		customers = append(customers, *c)
	}
	return customers, count, mapError("search customers", rows.Err())
}
