package grant

import (
	"context"

	"github.com/casetrail/ability/id"
)

// Store defines persistence operations for custom permission grants.
type Store interface {
	// CreateGrant persists a new grant at the end of its membership's
	// declaration order.
	CreateGrant(ctx context.Context, g *Grant) error

	// GetGrant retrieves a grant by ID.
	GetGrant(ctx context.Context, grantID id.GrantID) (*Grant, error)

	// UpdateGrant persists changes to a grant.
	UpdateGrant(ctx context.Context, g *Grant) error

	// DeleteGrant removes a grant by ID.
	DeleteGrant(ctx context.Context, grantID id.GrantID) error

	// ListGrantsForMembership returns a membership's grants in
	// declaration order.
	ListGrantsForMembership(ctx context.Context, membershipID id.MembershipID) ([]*Grant, error)

	// ListGrants returns grants matching the filter.
	ListGrants(ctx context.Context, filter *ListFilter) ([]*Grant, error)

	// CountGrants returns the number of grants matching the filter.
	CountGrants(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteGrantsByMembership removes all grants owned by a membership.
	DeleteGrantsByMembership(ctx context.Context, membershipID id.MembershipID) error
}
