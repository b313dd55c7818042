// Package principal defines the Principal entity and its store interface.
package principal

import (
	"time"

	"github.com/casetrail/ability/id"
)

// Principal is an authenticated actor with static role tags and group
// memberships. Principals are never hard-deleted; removal is a soft
// deactivation so historical records keep a valid owner.
//
// Roles holds raw stored tags; the rule compiler validates them against
// the closed RoleTag enum and rejects unknown tags at compile time.
type Principal struct {
	ID            id.PrincipalID `json:"id" db:"id"`
	Email         string         `json:"email" db:"email"`
	FirstName     string         `json:"first_name" db:"first_name"`
	LastName      string         `json:"last_name,omitempty" db:"last_name"`
	Telephone     string         `json:"telephone,omitempty" db:"telephone"`
	Roles         []string       `json:"roles" db:"-"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	DeactivatedAt *time.Time     `json:"deactivated_at,omitempty" db:"deactivated_at"`
	Metadata      map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing principals.
type ListFilter struct {
	Role     string `json:"role,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
