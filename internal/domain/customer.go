package domain

import "time"

type Customer struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	DocumentNumber string    `json:"document_number"`
	Address        string    `json:"address"`
	CreatedBy      ActorID   `json:"created_by"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}

func (c *Customer) Validate() error {
	if c.Name == "" {
		return NewValidationError("name", "customer name is required")
	}
	if c.Phone == "" && c.Email == "" {
		return NewValidationError("contact", "a phone number or an email is required")
	}
	return nil
}
