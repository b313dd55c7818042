package ability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/store"
)

// Guard is the programmatic enforcement surface over an Engine. It runs
// the resolve → compile → evaluate pipeline and, on success, returns a
// context carrying the resolved identity and its compiled rules.
//
// Two mutually exclusive tracks exist. The principal track runs the full
// rule engine. The applicant track never sees the rule engine at all:
// an applicant only ever acts on its own records, so enforcement is a
// bare identity-equality test.
type Guard struct {
	eng *Engine
}

// NewGuard creates a guard over the given engine.
func NewGuard(eng *Engine) *Guard {
	return &Guard{eng: eng}
}

// Engine returns the underlying engine.
func (g *Guard) Engine() *Engine { return g.eng }

// Authorize runs a principal-track check. An unresolvable principal is
// ErrUnauthorized; a rule-engine deny is ErrAccessDenied. On success the
// returned context carries the principal and its compiled rule list.
func (g *Guard) Authorize(ctx context.Context, principalID id.PrincipalID, q Query) (context.Context, error) {
	start := time.Now()

	snap, err := g.eng.registry.Resolve(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return ctx, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return ctx, err
	}
	rules, err := Compile(snap)
	if err != nil {
		return ctx, err
	}

	result := g.eng.evaluator.Evaluate(rules, q)
	result.EvalTimeNs = time.Since(start).Nanoseconds()
	g.eng.recordDecision(ctx, principalID, q, &result)

	if !result.Allowed {
		return ctx, fmt.Errorf("%w: %s: %s", ErrAccessDenied, result.Decision, result.Reason)
	}

	ctx = WithPrincipal(ctx, snap.Principal)
	ctx = WithRules(ctx, rules)
	return ctx, nil
}

// Identify runs the principal track without a query: it resolves the
// principal and attaches it with its rules, for routes that only need an
// authenticated identity.
func (g *Guard) Identify(ctx context.Context, principalID id.PrincipalID) (context.Context, error) {
	snap, err := g.eng.registry.Resolve(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return ctx, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return ctx, err
	}
	rules, err := Compile(snap)
	if err != nil {
		return ctx, err
	}
	ctx = WithPrincipal(ctx, snap.Principal)
	ctx = WithRules(ctx, rules)
	return ctx, nil
}

// AuthorizeApplicant runs an applicant-track check: the credential's
// applicant ID must equal the ID of the applicant whose records the
// request targets. An unresolvable or deactivated applicant is
// ErrUnauthorized; an identity mismatch is ErrAccessDenied. On success
// the returned context carries the applicant.
func (g *Guard) AuthorizeApplicant(ctx context.Context, applicantID, targetID id.ApplicantID) (context.Context, error) {
	start := time.Now()

	a, err := g.eng.store.GetApplicant(ctx, applicantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ctx, fmt.Errorf("%w: %w: %s", ErrUnauthorized, ErrApplicantNotFound, applicantID)
		}
		return ctx, fmt.Errorf("ability: resolve applicant: %w", err)
	}
	if !a.IsActive {
		return ctx, fmt.Errorf("%w: %w: %s is deactivated", ErrUnauthorized, ErrApplicantNotFound, applicantID)
	}

	allowed := a.ID.String() == targetID.String()
	g.recordApplicantDecision(ctx, applicantID, targetID, allowed, time.Since(start).Nanoseconds())

	if !allowed {
		return ctx, fmt.Errorf("%w: applicant identity mismatch", ErrAccessDenied)
	}
	return WithApplicant(ctx, a), nil
}

func (g *Guard) recordApplicantDecision(ctx context.Context, applicantID, targetID id.ApplicantID, allowed bool, elapsedNs int64) {
	if !g.eng.config.logDecisions() {
		return
	}
	if g.eng.config.logDenialsOnly() && allowed {
		return
	}

	entry := &checklog.Entry{
		ID:          id.NewDecisionLogID(),
		Track:       checklog.TrackApplicant,
		PrincipalID: applicantID.String(),
		Decision:    string(DecisionDenyExplicit),
		Reason:      "applicant identity mismatch",
		EvalTimeNs:  elapsedNs,
		Metadata:    map[string]any{"target_id": targetID.String()},
		CreatedAt:   time.Now(),
	}
	if allowed {
		entry.Decision = string(DecisionAllow)
		entry.Reason = ""
	}
	if err := g.eng.store.CreateCheckLog(ctx, entry); err != nil {
		g.eng.logger.Warn("ability: decision log write failed",
			slog.String("applicant_id", applicantID.String()),
			slog.String("error", err.Error()))
	}
}
