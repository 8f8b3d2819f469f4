package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a hiring tenant. The admin profile lives on the same row.
type Company struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AdminUserID uuid.UUID `json:"admin_user_id" db:"admin_user_id"`
	Name        string    `json:"name" db:"name"`
	AdminName   string    `json:"admin_name" db:"admin_name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone" db:"phone"`
	Address     *string   `json:"address" db:"address"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
