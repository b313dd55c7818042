// Package plugin defines the plugin system for the ability engine.
// Plugins are notified of lifecycle events (check performed, membership
// created, grant deleted, etc.) and can react with logging, metrics,
// or their own side effects.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Check lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeCheck is called before an authorization check is evaluated.
// The query parameter is ability.Query (passed as any to avoid import cycle).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, principalID string, query any) error
}

// AfterCheck is called after an authorization check completes.
// The query parameter is ability.Query; result is ability.Result.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, principalID string, query, result any) error
}

// ──────────────────────────────────────────────────
// Principal lifecycle hooks
// ──────────────────────────────────────────────────

// PrincipalCreated is called after a principal is created.
type PrincipalCreated interface {
	OnPrincipalCreated(ctx context.Context, p *principal.Principal) error
}

// PrincipalDeactivated is called after a principal is deactivated.
type PrincipalDeactivated interface {
	OnPrincipalDeactivated(ctx context.Context, principalID id.PrincipalID) error
}

// RolesChanged is called after a principal's static role tags are replaced.
type RolesChanged interface {
	OnRolesChanged(ctx context.Context, principalID id.PrincipalID, roles []string) error
}

// ──────────────────────────────────────────────────
// Membership lifecycle hooks
// ──────────────────────────────────────────────────

// MembershipCreated is called after a membership is created.
type MembershipCreated interface {
	OnMembershipCreated(ctx context.Context, m *membership.Membership) error
}

// MembershipRoleChanged is called after a membership's role is replaced.
type MembershipRoleChanged interface {
	OnMembershipRoleChanged(ctx context.Context, m *membership.Membership) error
}

// MembershipDeleted is called after a membership (and its grants) is deleted.
type MembershipDeleted interface {
	OnMembershipDeleted(ctx context.Context, membershipID id.MembershipID) error
}

// ──────────────────────────────────────────────────
// Grant lifecycle hooks
// ──────────────────────────────────────────────────

// GrantCreated is called after a custom grant is created.
type GrantCreated interface {
	OnGrantCreated(ctx context.Context, g *grant.Grant) error
}

// GrantUpdated is called after a custom grant is updated.
type GrantUpdated interface {
	OnGrantUpdated(ctx context.Context, g *grant.Grant) error
}

// GrantDeleted is called after a custom grant is deleted.
type GrantDeleted interface {
	OnGrantDeleted(ctx context.Context, grantID id.GrantID) error
}

// ──────────────────────────────────────────────────
// Applicant lifecycle hooks
// ──────────────────────────────────────────────────

// ApplicantCreated is called after an applicant is created.
type ApplicantCreated interface {
	OnApplicantCreated(ctx context.Context, a *applicant.Applicant) error
}

// ApplicantDeactivated is called after an applicant is deactivated.
type ApplicantDeactivated interface {
	OnApplicantDeactivated(ctx context.Context, applicantID id.ApplicantID) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
