package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleHR    = "hr"
	RoleAgent = "agent"
)

// User is a login account. Admin and HR users belong to a company; field
// agents are marketplace-wide and carry no company.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CompanyID    *uuid.UUID `json:"company_id" db:"company_id"`
	Email        *string    `json:"email" db:"email"`
	Mobile       *string    `json:"mobile" db:"mobile"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	Role         string     `json:"role" db:"role"`
	FirstLogin   bool       `json:"first_login" db:"first_login"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
