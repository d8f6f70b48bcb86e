package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a directory member. ReportingTo links to the user's manager and
// forms a forest; MappedProjects is the set of projects the user is assigned to.
type User struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	DisplayName    string      `json:"display_name"`
	Designation    string      `json:"designation"`
	ReportingTo    *uuid.UUID  `json:"reporting_to"`
	MappedProjects []uuid.UUID `json:"mapped_projects"`
	ContactNumber  string      `json:"contact_number"`
	IsAdmin        bool        `json:"is_admin"`
	Password       string      `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// DefaultDisplayName derives a display name from the local part of an email.
func DefaultDisplayName(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// HasProject reports whether projectID is in the user's mapped set.
func (u *User) HasProject(projectID uuid.UUID) bool {
	for _, id := range u.MappedProjects {
		if id == projectID {
			return true
		}
	}
	return false
}
