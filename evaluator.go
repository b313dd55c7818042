package ability

import (
	"fmt"

	"github.com/casetrail/ability/grant"
)

// Evaluator decides a query against a compiled rule list.
type Evaluator interface {
	Evaluate(rules RuleList, q Query) Result
}

// DefaultEvaluator returns the built-in last-match-wins evaluator.
func DefaultEvaluator() Evaluator { return &lastMatchEvaluator{} }

type lastMatchEvaluator struct{}

// Evaluate scans the rule list in order and lets the last matching rule
// decide. A rule matches when its subject type equals the query's (or is
// the wildcard), its action covers the requested one after MANAGE
// expansion, and its condition is satisfied by the attribute bag. A nil
// attribute bag is a type-level check: conditions are skipped entirely.
// No match is a default deny; evaluation never errors.
func (e *lastMatchEvaluator) Evaluate(rules RuleList, q Query) Result {
	if !q.Action.Requestable() {
		return Result{
			Decision: DecisionDenyDefault,
			Reason:   fmt.Sprintf("action %q is not requestable", q.Action),
		}
	}

	var matched *Rule
	for i := range rules {
		r := &rules[i]
		if r.Subject != SubjectAll && r.Subject != q.Subject {
			continue
		}
		if !r.Action.Covers(q.Action) {
			continue
		}
		if q.Attributes != nil && !r.Condition.Matches(q.Attributes) {
			continue
		}
		matched = r
	}

	if matched == nil {
		return Result{
			Decision: DecisionDenyDefault,
			Reason:   fmt.Sprintf("no rule matches %s on %s", q.Action, q.Subject),
		}
	}

	info := &MatchInfo{
		Source: string(matched.Source),
		RuleID: matched.SourceID,
		Detail: fmt.Sprintf("%s %s on %s", matched.Effect, matched.Action, matched.Subject),
	}
	if matched.Effect == grant.EffectDeny {
		return Result{
			Decision:  DecisionDenyExplicit,
			Reason:    fmt.Sprintf("denied by %s rule", matched.Source),
			MatchedBy: info,
		}
	}
	return Result{
		Allowed:   true,
		Decision:  DecisionAllow,
		MatchedBy: info,
	}
}
