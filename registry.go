package ability

import (
	"context"
	"errors"
	"fmt"

	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
	"github.com/casetrail/ability/store"
)

// Snapshot is the full authorization-relevant state of one principal at
// one moment: the principal record, every membership, and each
// membership's ordered custom grants. Snapshots are read-only inputs to
// compilation and are never cached across checks.
type Snapshot struct {
	Principal   *principal.Principal
	Memberships []MembershipSnapshot
}

// MembershipSnapshot pairs a membership with its stored grants in
// declaration order.
type MembershipSnapshot struct {
	Membership *membership.Membership
	Grants     []*grant.Grant
}

// Registry loads principal snapshots from the store.
type Registry struct {
	store store.Store
}

// NewRegistry creates a registry over the given store.
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

// Resolve loads the snapshot for a principal. It returns
// ErrPrincipalNotFound when the ID does not resolve to an active
// principal; deactivated principals are treated as absent.
func (r *Registry) Resolve(ctx context.Context, principalID id.PrincipalID) (*Snapshot, error) {
	p, err := r.store.GetPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPrincipalNotFound, principalID)
		}
		return nil, fmt.Errorf("ability: resolve principal: %w", err)
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: %s is deactivated", ErrPrincipalNotFound, principalID)
	}

	memberships, err := r.store.ListMembershipsForPrincipal(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("ability: resolve memberships: %w", err)
	}

	snap := &Snapshot{
		Principal:   p,
		Memberships: make([]MembershipSnapshot, 0, len(memberships)),
	}
	for _, m := range memberships {
		grants, err := r.store.ListGrantsForMembership(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("ability: resolve grants for membership %s: %w", m.ID, err)
		}
		snap.Memberships = append(snap.Memberships, MembershipSnapshot{
			Membership: m,
			Grants:     grants,
		})
	}
	return snap, nil
}
