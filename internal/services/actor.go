package services

import (
	"genzip/internal/models"

	"github.com/google/uuid"
)

// Actor is the authenticated company user a request runs as.
type Actor struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Scope returns the creator filter for workspace records: admins see the
// whole company, HRs only what they created.
func (a Actor) Scope() *uuid.UUID {
	if a.IsAdmin() {
		return nil
	}
	id := a.UserID
	return &id
}

// Owns reports whether the actor may act on a record created by createdBy.
func (a Actor) Owns(companyID, createdBy uuid.UUID) bool {
	if companyID != a.CompanyID {
		return false
	}
	return a.IsAdmin() || createdBy == a.UserID
}
