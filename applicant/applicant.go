// Package applicant defines the self-service Applicant identity.
//
// Applicants are the externally-facing authentication track: they hold no
// roles and no memberships, and only ever act on records they own. The
// sole authorization check for this track is identity equality, enforced
// by the guard layer; the rule engine is never consulted.
package applicant

import (
	"time"

	"github.com/casetrail/ability/id"
)

// Applicant is a roleless self-service identity, signed in via telephone
// OTP rather than credentials.
type Applicant struct {
	ID            id.ApplicantID `json:"id" db:"id"`
	Telephone     string         `json:"telephone" db:"telephone"`
	Email         string         `json:"email,omitempty" db:"email"`
	FirstName     string         `json:"first_name,omitempty" db:"first_name"`
	LastName      string         `json:"last_name,omitempty" db:"last_name"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	DeactivatedAt *time.Time     `json:"deactivated_at,omitempty" db:"deactivated_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing applicants.
type ListFilter struct {
	IsActive *bool  `json:"is_active,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
