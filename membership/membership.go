// Package membership defines the Membership entity (principal→group binding).
package membership

import (
	"fmt"
	"time"

	"github.com/casetrail/ability/id"
)

// Role is a principal's authority level within one resource group.
// A membership holds exactly one role at a time; changing it is a full
// replace, never an addition.
type Role string

const (
	// RoleOwner manages every group-scoped resource, including the
	// group record itself and other members' grants.
	RoleOwner Role = "OWNER"

	// RoleOfficer manages documents, memberships, and group objects,
	// but not the group record or permission grants.
	RoleOfficer Role = "OFFICER"

	// RoleMember has read-only access to group documents and objects.
	RoleMember Role = "MEMBER"
)

// ParseRole validates a stored membership role tag.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleOfficer, RoleMember:
		return Role(s), nil
	default:
		return "", fmt.Errorf("membership: unknown role %q", s)
	}
}

// Membership binds a principal to a resource group. It is a pure join
// record: removal is a hard delete that takes the membership's custom
// grants with it.
type Membership struct {
	ID          id.MembershipID `json:"id" db:"id"`
	PrincipalID id.PrincipalID  `json:"principal_id" db:"principal_id"`
	GroupID     string          `json:"group_id" db:"group_id"`
	Role        Role            `json:"role" db:"role"`
	Metadata    map[string]any  `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing memberships.
type ListFilter struct {
	PrincipalID *id.PrincipalID `json:"principal_id,omitempty"`
	GroupID     string          `json:"group_id,omitempty"`
	Role        Role            `json:"role,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Offset      int             `json:"offset,omitempty"`
}
