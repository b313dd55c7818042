package ability

import "github.com/casetrail/ability/grant"

// RuleSource identifies which compilation stage emitted a rule.
type RuleSource string

const (
	// SourceSelf marks the always-emitted rules on the principal's own
	// record.
	SourceSelf RuleSource = "self"

	// SourceRole marks rules derived from a static role tag.
	SourceRole RuleSource = "role"

	// SourceMembership marks rules derived from a membership role.
	SourceMembership RuleSource = "membership"

	// SourceGrant marks rules derived from a stored custom grant.
	SourceGrant RuleSource = "grant"
)

// Rule is a single compiled authorization rule. Rules are only ever
// produced by compilation; they are never stored.
type Rule struct {
	Action    Action          `json:"action"`
	Subject   SubjectType     `json:"subject"`
	Effect    grant.Effect    `json:"effect"`
	Condition grant.Condition `json:"condition,omitempty"`
	Source    RuleSource      `json:"source"`
	SourceID  string          `json:"source_id,omitempty"`
}

// RuleList is an ordered list of compiled rules. Order is significant:
// the evaluator gives the last matching rule the final say.
type RuleList []Rule

// Allows is a shorthand evaluation of the list with the default
// evaluator, reporting only the polarity.
func (rl RuleList) Allows(q Query) bool {
	return DefaultEvaluator().Evaluate(rl, q).Allowed
}
