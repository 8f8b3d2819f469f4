package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AgentPaymentPending = "Pending"
	AgentPaymentPaid    = "Paid"
)

// AgentPayment is the payout owed to a field agent for one completed interview.
type AgentPayment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	AgentID     uuid.UUID  `json:"agent_id" db:"agent_id"`
	InterviewID uuid.UUID  `json:"interview_id" db:"interview_id"`
	Amount      float64    `json:"amount" db:"amount"`
	Status      string     `json:"status" db:"status"`
	PaidAt      *time.Time `json:"paid_at" db:"paid_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type AgentPaymentSummary struct {
	Payments []*AgentPayment    `json:"payments"`
	Totals   map[string]float64 `json:"totals"`
}
