package membership

import (
	"context"

	"github.com/casetrail/ability/id"
)

// Store defines persistence operations for memberships.
type Store interface {
	// CreateMembership persists a new membership. A principal holds at
	// most one membership per group.
	CreateMembership(ctx context.Context, m *Membership) error

	// GetMembership retrieves a membership by ID.
	GetMembership(ctx context.Context, membershipID id.MembershipID) (*Membership, error)

	// GetMembershipByPrincipalAndGroup retrieves the membership binding
	// a principal to a group, if any.
	GetMembershipByPrincipalAndGroup(ctx context.Context, principalID id.PrincipalID, groupID string) (*Membership, error)

	// SetMembershipRole replaces the membership's role.
	SetMembershipRole(ctx context.Context, membershipID id.MembershipID, role Role) error

	// DeleteMembership hard-deletes a membership and the custom grants
	// it owns.
	DeleteMembership(ctx context.Context, membershipID id.MembershipID) error

	// ListMembershipsForPrincipal returns a principal's memberships in
	// creation order.
	ListMembershipsForPrincipal(ctx context.Context, principalID id.PrincipalID) ([]*Membership, error)

	// ListMemberships returns memberships matching the filter.
	ListMemberships(ctx context.Context, filter *ListFilter) ([]*Membership, error)

	// CountMemberships returns the number of memberships matching the filter.
	CountMemberships(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteMembershipsByGroup removes every membership of a resource
	// group, cascading to their grants.
	DeleteMembershipsByGroup(ctx context.Context, groupID string) error
}
