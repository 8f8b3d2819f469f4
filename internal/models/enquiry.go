package models

import (
	"time"

	"github.com/google/uuid"
)

type Enquiry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CompanyID *uuid.UUID `json:"company_id" db:"company_id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	Phone     *string    `json:"phone" db:"phone"`
	Message   string     `json:"message" db:"message"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
