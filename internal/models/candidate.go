package models

import (
	"time"

	"github.com/google/uuid"
)

type Candidate struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Location  *string   `json:"location" db:"location"`
	Country   *string   `json:"country" db:"country"`
	State     *string   `json:"state" db:"state"`
	City      string    `json:"city" db:"city"`
	AddedBy   *string   `json:"added_by" db:"added_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c *Candidate) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
