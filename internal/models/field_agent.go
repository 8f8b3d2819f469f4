package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldAgent is the profile of a marketplace agent who attends interviews
// in person. AgentCode has the form EMP-<CITY3>-<6 digits>.
type FieldAgent struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	AgentCode        string    `json:"agent_code" db:"agent_code"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name" db:"last_name"`
	Email            *string   `json:"email" db:"email"`
	Mobile           string    `json:"mobile" db:"mobile"`
	AltPhone         *string   `json:"alt_phone" db:"alt_phone"`
	EmergencyContact *string   `json:"emergency_contact" db:"emergency_contact"`
	Address          *string   `json:"address" db:"address"`
	City             string    `json:"city" db:"city"`
	PhotoURL         *string   `json:"photo_url" db:"photo_url"`
	GovIDURL         *string   `json:"gov_id_url" db:"gov_id_url"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
