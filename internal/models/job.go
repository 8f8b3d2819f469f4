package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is an opening a company interviews for.
type Job struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CompanyID    uuid.UUID  `json:"company_id" db:"company_id"`
	CreatedBy    uuid.UUID  `json:"created_by" db:"created_by"`
	JobCode      string     `json:"job_code" db:"job_code"`
	Title        string     `json:"title" db:"title"`
	Branch       *string    `json:"branch" db:"branch"`
	Description  *string    `json:"description" db:"description"`
	ClosureDate  *time.Time `json:"closure_date" db:"closure_date"`
	HighPriority bool       `json:"high_priority" db:"high_priority"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
