package ability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/plugin"
	"github.com/casetrail/ability/store"
)

// Engine is the central authorization engine. It resolves principal
// snapshots, compiles them into rule lists, evaluates checks, records
// decisions, and fires extension hooks. Rules are recompiled on every
// check so that role and grant changes take effect immediately.
type Engine struct {
	store     store.Store
	registry  *Registry
	evaluator Evaluator
	plugins   *plugin.Registry
	logger    *slog.Logger
	config    Config

	pendingPlugins []plugin.Plugin
}

// NewEngine creates a new ability engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		evaluator: DefaultEvaluator(),
		logger:    slog.Default(),
		config:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("ability: store is required")
	}
	e.plugins = plugin.NewRegistry(e.logger)
	for _, x := range e.pendingPlugins {
		e.plugins.Register(x)
	}
	e.pendingPlugins = nil
	e.registry = NewRegistry(e.store)
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Registry returns the snapshot registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	e.plugins.EmitShutdown(ctx)
	return nil
}

// CompileRules resolves a principal and compiles its rule list. This is
// what the Check hot path runs; it is exported for guards that evaluate
// several queries against one snapshot.
func (e *Engine) CompileRules(ctx context.Context, principalID id.PrincipalID) (RuleList, error) {
	snap, err := e.registry.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}
	return Compile(snap)
}

// Check performs an authorization check. This is the hot path.
func (e *Engine) Check(ctx context.Context, principalID id.PrincipalID, q Query) (*Result, error) {
	start := time.Now()

	e.plugins.EmitBeforeCheck(ctx, principalID.String(), q)

	rules, err := e.CompileRules(ctx, principalID)
	if err != nil {
		return nil, err
	}

	result := e.evaluator.Evaluate(rules, q)
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	e.recordDecision(ctx, principalID, q, &result)

	e.plugins.EmitAfterCheck(ctx, principalID.String(), q, result)

	return &result, nil
}

// Enforce returns an error if the authorization check is denied.
func (e *Engine) Enforce(ctx context.Context, principalID id.PrincipalID, q Query) error {
	result, err := e.Check(ctx, principalID, q)
	if err != nil {
		return fmt.Errorf("ability check: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrAccessDenied, result.Decision, result.Reason)
	}
	return nil
}

// CanI is a shorthand for a simple type-level authorization check.
func (e *Engine) CanI(ctx context.Context, principalID id.PrincipalID, action Action, subject SubjectType) (bool, error) {
	result, err := e.Check(ctx, principalID, Query{Action: action, Subject: subject})
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// CheckObject checks an action against a concrete domain object, using
// the subject type and attributes the object declares.
func (e *Engine) CheckObject(ctx context.Context, principalID id.PrincipalID, action Action, obj Object) (*Result, error) {
	return e.Check(ctx, principalID, Query{
		Action:     action,
		Subject:    obj.AbilitySubject(),
		Attributes: obj.AbilityAttributes(),
	})
}

// recordDecision writes the check outcome to the decision log,
// best-effort: a log failure never fails the check.
func (e *Engine) recordDecision(ctx context.Context, principalID id.PrincipalID, q Query, result *Result) {
	if !e.config.logDecisions() {
		return
	}
	if e.config.logDenialsOnly() && result.Allowed {
		return
	}

	entry := &checklog.Entry{
		ID:          id.NewDecisionLogID(),
		Track:       checklog.TrackPrincipal,
		PrincipalID: principalID.String(),
		Action:      string(q.Action),
		Subject:     string(q.Subject),
		Decision:    string(result.Decision),
		Reason:      result.Reason,
		EvalTimeNs:  result.EvalTimeNs,
		CreatedAt:   time.Now(),
	}
	if q.Attributes != nil {
		if gid, ok := q.Attributes["group_id"].(string); ok {
			entry.GroupID = gid
		}
	}
	if err := e.store.CreateCheckLog(ctx, entry); err != nil {
		e.logger.Warn("ability: decision log write failed",
			slog.String("principal_id", principalID.String()),
			slog.String("error", err.Error()))
	}
}
