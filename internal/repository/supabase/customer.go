package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/repository"
)

type customerRepository struct {
	client Client
}

func NewCustomerRepository(client Client) repository.CustomerRepository {
	return &customerRepository{client: client}
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	now := time.Now().UTC()
	c.CreatedOn, c.UpdatedOn = now, now
	_, err := run("create customer", tableCustomers, r.client.From(tableCustomers).Insert(c, false, "", "minimal", ""), nil)
	return err
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var rows []domain.Customer
	if _, err := run("get customer", tableCustomers, r.client.From(tableCustomers).Select("*", "", false).Eq("id", id).Limit(1, ""), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NotFound("customer", id)
	}
	return &rows[0], nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	c.UpdatedOn = time.Now().UTC()
	body := map[string]any{
		"name":            c.Name,
		"phone":           c.Phone,
		"email":           c.Email,
		"document_number": c.DocumentNumber,
		"address":         c.Address,
		"updated_on":      c.UpdatedOn,
	}
	var rows []domain.Customer
	if _, err := run("update customer", tableCustomers, r.client.From(tableCustomers).Update(body, "representation", "").Eq("id", c.ID), &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.NotFound("customer", c.ID)
	}
	return nil
}

func (r *customerRepository) Search(ctx context.Context, query string, page, pageSize int32) ([]domain.Customer, int32, error) {
	from, to := pageRange(page, pageSize)
	q := r.client.From(tableCustomers).Select("*", "exact", false)
	if s := sanitizeSearch(query); s != "" {
		pattern := "*" + s + "*"
		q = q.Or(fmt.Sprintf("name.ilike.%[1]s,phone.ilike.%[1]s,email.ilike.%[1]s,document_number.ilike.%[1]s", pattern), "")
	}
	q = q.Order("name", &postgrest.OrderOpts{Ascending: true}).Range(from, to, "")

	var rows []domain.Customer
	count, err := run("search customers", tableCustomers, q, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, int32(count), nil
}

// sanitizeSearch drops characters that carry meaning in a PostgREST or= filter.
func sanitizeSearch(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '"':
			return -1
		}
		return r
	}, s))
}
