package models

import (
	"time"

	"github.com/google/uuid"
)

// Interviewer is a company-side panelist attached to a job.
type Interviewer struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CompanyID uuid.UUID  `json:"company_id" db:"company_id"`
	CreatedBy uuid.UUID  `json:"created_by" db:"created_by"`
	JobID     *uuid.UUID `json:"job_id" db:"job_id"`
	FirstName string     `json:"first_name" db:"first_name"`
	LastName  string     `json:"last_name" db:"last_name"`
	Email     string     `json:"email" db:"email"`
	Phone     *string    `json:"phone" db:"phone"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

func (i *Interviewer) FullName() string {
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}
