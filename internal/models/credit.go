package models

import (
	"time"

	"github.com/google/uuid"
)

// CreditTransaction is one ledger row. A row either grants credits
// (CreditsAdded > 0) or records a usage (CreditsUsed == 1) tied to an
// interview through ReferenceID.
type CreditTransaction struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	CompanyID      uuid.UUID  `json:"company_id" db:"company_id"`
	CreditsAdded   int        `json:"credits_added" db:"credits_added"`
	CreditsUsed    int        `json:"credits_used" db:"credits_used"`
	Reason         string     `json:"reason" db:"reason"`
	ReferenceID    *uuid.UUID `json:"reference_id" db:"reference_id"`
	IdempotencyKey *string    `json:"-" db:"idempotency_key"`
	AmountPaid     float64    `json:"amount_paid" db:"amount_paid"`
	PaymentMode    *string    `json:"payment_mode" db:"payment_mode"`
	ReleasedAt     *time.Time `json:"released_at" db:"released_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// CreditSummary is the derived balance of a company.
type CreditSummary struct {
	Added     int `json:"credits_added"`
	Used      int `json:"credits_used"`
	Available int `json:"credits_available"`
}

// GrantRequest describes a credit grant.
type GrantRequest struct {
	CompanyID      uuid.UUID
	Credits        int
	Reason         string
	AmountPaid     float64
	PaymentMode    *string
	ReferenceID    *uuid.UUID
	IdempotencyKey *string
}
