package plugin

import (
	"context"
	"log/slog"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeCheckEntry struct {
	name string
	hook BeforeCheck
}
type afterCheckEntry struct {
	name string
	hook AfterCheck
}
type principalCreatedEntry struct {
	name string
	hook PrincipalCreated
}
type principalDeactivatedEntry struct {
	name string
	hook PrincipalDeactivated
}
type rolesChangedEntry struct {
	name string
	hook RolesChanged
}
type membershipCreatedEntry struct {
	name string
	hook MembershipCreated
}
type membershipRoleChangedEntry struct {
	name string
	hook MembershipRoleChanged
}
type membershipDeletedEntry struct {
	name string
	hook MembershipDeleted
}
type grantCreatedEntry struct {
	name string
	hook GrantCreated
}
type grantUpdatedEntry struct {
	name string
	hook GrantUpdated
}
type grantDeletedEntry struct {
	name string
	hook GrantDeleted
}
type applicantCreatedEntry struct {
	name string
	hook ApplicantCreated
}
type applicantDeactivatedEntry struct {
	name string
	hook ApplicantDeactivated
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeCheck           []beforeCheckEntry
	afterCheck            []afterCheckEntry
	principalCreated      []principalCreatedEntry
	principalDeactivated  []principalDeactivatedEntry
	rolesChanged          []rolesChangedEntry
	membershipCreated     []membershipCreatedEntry
	membershipRoleChanged []membershipRoleChangedEntry
	membershipDeleted     []membershipDeletedEntry
	grantCreated          []grantCreatedEntry
	grantUpdated          []grantUpdatedEntry
	grantDeleted          []grantDeletedEntry
	applicantCreated      []applicantCreatedEntry
	applicantDeactivated  []applicantDeactivatedEntry
	shutdown              []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeCheck); ok {
		r.beforeCheck = append(r.beforeCheck, beforeCheckEntry{name, h})
	}
	if h, ok := p.(AfterCheck); ok {
		r.afterCheck = append(r.afterCheck, afterCheckEntry{name, h})
	}
	if h, ok := p.(PrincipalCreated); ok {
		r.principalCreated = append(r.principalCreated, principalCreatedEntry{name, h})
	}
	if h, ok := p.(PrincipalDeactivated); ok {
		r.principalDeactivated = append(r.principalDeactivated, principalDeactivatedEntry{name, h})
	}
	if h, ok := p.(RolesChanged); ok {
		r.rolesChanged = append(r.rolesChanged, rolesChangedEntry{name, h})
	}
	if h, ok := p.(MembershipCreated); ok {
		r.membershipCreated = append(r.membershipCreated, membershipCreatedEntry{name, h})
	}
	if h, ok := p.(MembershipRoleChanged); ok {
		r.membershipRoleChanged = append(r.membershipRoleChanged, membershipRoleChangedEntry{name, h})
	}
	if h, ok := p.(MembershipDeleted); ok {
		r.membershipDeleted = append(r.membershipDeleted, membershipDeletedEntry{name, h})
	}
	if h, ok := p.(GrantCreated); ok {
		r.grantCreated = append(r.grantCreated, grantCreatedEntry{name, h})
	}
	if h, ok := p.(GrantUpdated); ok {
		r.grantUpdated = append(r.grantUpdated, grantUpdatedEntry{name, h})
	}
	if h, ok := p.(GrantDeleted); ok {
		r.grantDeleted = append(r.grantDeleted, grantDeletedEntry{name, h})
	}
	if h, ok := p.(ApplicantCreated); ok {
		r.applicantCreated = append(r.applicantCreated, applicantCreatedEntry{name, h})
	}
	if h, ok := p.(ApplicantDeactivated); ok {
		r.applicantDeactivated = append(r.applicantDeactivated, applicantDeactivatedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Check event emitters
// ──────────────────────────────────────────────────

// EmitBeforeCheck notifies all plugins that implement BeforeCheck.
func (r *Registry) EmitBeforeCheck(ctx context.Context, principalID string, query any) {
	for _, e := range r.beforeCheck {
		if err := e.hook.OnBeforeCheck(ctx, principalID, query); err != nil {
			r.logHookError("OnBeforeCheck", e.name, err)
		}
	}
}

// EmitAfterCheck notifies all plugins that implement AfterCheck.
func (r *Registry) EmitAfterCheck(ctx context.Context, principalID string, query, result any) {
	for _, e := range r.afterCheck {
		if err := e.hook.OnAfterCheck(ctx, principalID, query, result); err != nil {
			r.logHookError("OnAfterCheck", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Principal event emitters
// ──────────────────────────────────────────────────

// EmitPrincipalCreated notifies all plugins that implement PrincipalCreated.
func (r *Registry) EmitPrincipalCreated(ctx context.Context, p *principal.Principal) {
	for _, e := range r.principalCreated {
		if err := e.hook.OnPrincipalCreated(ctx, p); err != nil {
			r.logHookError("OnPrincipalCreated", e.name, err)
		}
	}
}

// EmitPrincipalDeactivated notifies all plugins that implement PrincipalDeactivated.
func (r *Registry) EmitPrincipalDeactivated(ctx context.Context, principalID id.PrincipalID) {
	for _, e := range r.principalDeactivated {
		if err := e.hook.OnPrincipalDeactivated(ctx, principalID); err != nil {
			r.logHookError("OnPrincipalDeactivated", e.name, err)
		}
	}
}

// EmitRolesChanged notifies all plugins that implement RolesChanged.
func (r *Registry) EmitRolesChanged(ctx context.Context, principalID id.PrincipalID, roles []string) {
	for _, e := range r.rolesChanged {
		if err := e.hook.OnRolesChanged(ctx, principalID, roles); err != nil {
			r.logHookError("OnRolesChanged", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Membership event emitters
// ──────────────────────────────────────────────────

// EmitMembershipCreated notifies all plugins that implement MembershipCreated.
func (r *Registry) EmitMembershipCreated(ctx context.Context, m *membership.Membership) {
	for _, e := range r.membershipCreated {
		if err := e.hook.OnMembershipCreated(ctx, m); err != nil {
			r.logHookError("OnMembershipCreated", e.name, err)
		}
	}
}

// EmitMembershipRoleChanged notifies all plugins that implement MembershipRoleChanged.
func (r *Registry) EmitMembershipRoleChanged(ctx context.Context, m *membership.Membership) {
	for _, e := range r.membershipRoleChanged {
		if err := e.hook.OnMembershipRoleChanged(ctx, m); err != nil {
			r.logHookError("OnMembershipRoleChanged", e.name, err)
		}
	}
}

// EmitMembershipDeleted notifies all plugins that implement MembershipDeleted.
func (r *Registry) EmitMembershipDeleted(ctx context.Context, membershipID id.MembershipID) {
	for _, e := range r.membershipDeleted {
		if err := e.hook.OnMembershipDeleted(ctx, membershipID); err != nil {
			r.logHookError("OnMembershipDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Grant event emitters
// ──────────────────────────────────────────────────

// EmitGrantCreated notifies all plugins that implement GrantCreated.
func (r *Registry) EmitGrantCreated(ctx context.Context, g *grant.Grant) {
	for _, e := range r.grantCreated {
		if err := e.hook.OnGrantCreated(ctx, g); err != nil {
			r.logHookError("OnGrantCreated", e.name, err)
		}
	}
}

// EmitGrantUpdated notifies all plugins that implement GrantUpdated.
func (r *Registry) EmitGrantUpdated(ctx context.Context, g *grant.Grant) {
	for _, e := range r.grantUpdated {
		if err := e.hook.OnGrantUpdated(ctx, g); err != nil {
			r.logHookError("OnGrantUpdated", e.name, err)
		}
	}
}

// EmitGrantDeleted notifies all plugins that implement GrantDeleted.
func (r *Registry) EmitGrantDeleted(ctx context.Context, grantID id.GrantID) {
	for _, e := range r.grantDeleted {
		if err := e.hook.OnGrantDeleted(ctx, grantID); err != nil {
			r.logHookError("OnGrantDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Applicant event emitters
// ──────────────────────────────────────────────────

// EmitApplicantCreated notifies all plugins that implement ApplicantCreated.
func (r *Registry) EmitApplicantCreated(ctx context.Context, a *applicant.Applicant) {
	for _, e := range r.applicantCreated {
		if err := e.hook.OnApplicantCreated(ctx, a); err != nil {
			r.logHookError("OnApplicantCreated", e.name, err)
		}
	}
}

// EmitApplicantDeactivated notifies all plugins that implement ApplicantDeactivated.
func (r *Registry) EmitApplicantDeactivated(ctx context.Context, applicantID id.ApplicantID) {
	for _, e := range r.applicantDeactivated {
		if err := e.hook.OnApplicantDeactivated(ctx, applicantID); err != nil {
			r.logHookError("OnApplicantDeactivated", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
