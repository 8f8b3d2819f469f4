package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

type Subscription struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	CompanyID             uuid.UUID  `json:"company_id" db:"company_id"`
	PlanName              string     `json:"plan_name" db:"plan_name"`
	TotalPaid             float64    `json:"total_paid" db:"total_paid"`
	CreditsAllocated      int        `json:"credits_allocated" db:"credits_allocated"`
	BonusCredits          int        `json:"bonus_credits" db:"bonus_credits"`
	FreeKM                int        `json:"free_km" db:"free_km"`
	Status                string     `json:"status" db:"status"`
	AutoRenew             bool       `json:"auto_renew" db:"auto_renew"`
	GatewaySubscriptionID *string    `json:"gateway_subscription_id" db:"gateway_subscription_id"`
	StartDate             time.Time  `json:"start_date" db:"start_date"`
	EndDate               *time.Time `json:"end_date" db:"end_date"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}
