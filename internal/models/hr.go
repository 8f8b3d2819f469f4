package models

import (
	"time"

	"github.com/google/uuid"
)

type HR struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CompanyID  uuid.UUID `json:"company_id" db:"company_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Email      string    `json:"email" db:"email"`
	Phone      *string   `json:"phone" db:"phone"`
	Branch     *string   `json:"branch" db:"branch"`
	FirstLogin bool      `json:"first_login" db:"first_login"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (h *HR) FullName() string {
	if h.LastName == "" {
		return h.FirstName
	}
	return h.FirstName + " " + h.LastName
}
