package models

import (
	"time"

	"github.com/google/uuid"
)

// Dashboard is the admin overview of one company.
type Dashboard struct {
	CompanyID       uuid.UUID               `json:"company_id"`
	TotalInterviews int                     `json:"total_interviews"`
	ByStatus        map[InterviewStatus]int `json:"by_status"`
	ByPaymentStatus map[PaymentStatus]int   `json:"by_payment_status"`
	Credits         CreditSummary           `json:"credits"`
	ActivePlan      *string                 `json:"active_plan"`
	HRCount         int                     `json:"hr_count"`
	LastUpdated     time.Time               `json:"last_updated"`
}
