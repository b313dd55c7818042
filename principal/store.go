package principal

import (
	"context"

	"github.com/casetrail/ability/id"
)

// Store defines persistence operations for principals.
type Store interface {
	// CreatePrincipal persists a new principal with its role tags.
	CreatePrincipal(ctx context.Context, p *Principal) error

	// GetPrincipal retrieves a principal by ID, roles included.
	GetPrincipal(ctx context.Context, principalID id.PrincipalID) (*Principal, error)

	// GetPrincipalByEmail retrieves a principal by email address.
	GetPrincipalByEmail(ctx context.Context, email string) (*Principal, error)

	// UpdatePrincipal persists changes to a principal's profile fields.
	// Roles are replaced via SetPrincipalRoles.
	UpdatePrincipal(ctx context.Context, p *Principal) error

	// SetPrincipalRoles replaces a principal's static role tags.
	SetPrincipalRoles(ctx context.Context, principalID id.PrincipalID, roles []string) error

	// DeactivatePrincipal soft-disables a principal. Principals are
	// never hard-deleted.
	DeactivatePrincipal(ctx context.Context, principalID id.PrincipalID) error

	// ListPrincipals returns principals matching the filter.
	ListPrincipals(ctx context.Context, filter *ListFilter) ([]*Principal, error)

	// CountPrincipals returns the number of principals matching the filter.
	CountPrincipals(ctx context.Context, filter *ListFilter) (int64, error)
}
