package ability

import (
	"context"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/principal"
)

type contextKey int

const (
	ctxKeyPrincipal contextKey = iota
	ctxKeyApplicant
	ctxKeyRules
)

// WithPrincipal returns a context carrying the resolved principal.
// Guards attach the principal after a successful authorization so that
// handlers never re-resolve it.
func WithPrincipal(ctx context.Context, p *principal.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the principal attached by a guard, or nil.
func PrincipalFromContext(ctx context.Context) *principal.Principal {
	p, _ := ctx.Value(ctxKeyPrincipal).(*principal.Principal)
	return p
}

// WithApplicant returns a context carrying the resolved applicant.
func WithApplicant(ctx context.Context, a *applicant.Applicant) context.Context {
	return context.WithValue(ctx, ctxKeyApplicant, a)
}

// ApplicantFromContext returns the applicant attached by a guard, or nil.
func ApplicantFromContext(ctx context.Context) *applicant.Applicant {
	a, _ := ctx.Value(ctxKeyApplicant).(*applicant.Applicant)
	return a
}

// WithRules returns a context carrying a compiled rule list, letting
// handlers run further checks against the same snapshot.
func WithRules(ctx context.Context, rules RuleList) context.Context {
	return context.WithValue(ctx, ctxKeyRules, rules)
}

// RulesFromContext returns the compiled rules attached by a guard, or nil.
func RulesFromContext(ctx context.Context) RuleList {
	rl, _ := ctx.Value(ctxKeyRules).(RuleList)
	return rl
}
