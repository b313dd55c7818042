// Package ability provides membership-scoped authorization for multi-tenant
// case-management backends.
//
// A principal carries static role tags (ADMIN, ANALYST, USER) and zero or
// more memberships in resource groups, each with a single membership role
// (OWNER, OFFICER, MEMBER) and an ordered list of stored custom grants.
// On every check the engine resolves that state, compiles it into a flat
// ordered rule list, and evaluates the requested (action, subject type,
// attributes) triple against it: last matching rule wins, no match is a
// deny.
//
//	eng, err := ability.NewEngine(
//	    ability.WithStore(memStore),
//	)
//	result, err := eng.Check(ctx, principalID, ability.Query{
//	    Action:     ability.ActionRead,
//	    Subject:    ability.SubjectDocument,
//	    Attributes: map[string]any{"group_id": "grp_123"},
//	})
package ability

import "fmt"

// Action is what a principal wants to do to a subject.
type Action string

const (
	// ActionCreate creates a new instance of the subject type.
	ActionCreate Action = "CREATE"

	// ActionRead reads an instance or lists the subject type.
	ActionRead Action = "READ"

	// ActionUpdate modifies an existing instance.
	ActionUpdate Action = "UPDATE"

	// ActionDelete removes an instance.
	ActionDelete Action = "DELETE"

	// ActionManage is an alias covering CREATE, READ, UPDATE, and DELETE.
	// It is declared in rules but never requested in a check.
	ActionManage Action = "MANAGE"
)

// crudActions is every requestable action, in declaration order.
var crudActions = [4]Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// Covers reports whether a declared action satisfies a requested one.
// MANAGE expands to the four CRUD actions at evaluation time; the
// expansion is never stored.
func (a Action) Covers(requested Action) bool {
	if a == requested {
		return true
	}
	if a != ActionManage {
		return false
	}
	for _, c := range crudActions {
		if c == requested {
			return true
		}
	}
	return false
}

// Requestable reports whether the action may appear in a check query.
func (a Action) Requestable() bool {
	for _, c := range crudActions {
		if c == a {
			return true
		}
	}
	return false
}

// ParseAction validates a stored action tag. Unknown tags are rejected so
// that raw strings from the data store never reach the matcher.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// SubjectType tags the kind of domain entity a rule or check targets.
// Entities declare their tag explicitly; the evaluator never infers it
// structurally.
type SubjectType string

const (
	// SubjectPrincipal is a principal (user) record.
	SubjectPrincipal SubjectType = "Principal"

	// SubjectCompany is a resource group (company) record.
	SubjectCompany SubjectType = "Company"

	// SubjectDocument is a document belonging to a resource group.
	SubjectDocument SubjectType = "Document"

	// SubjectMembership is a principal's membership in a resource group.
	SubjectMembership SubjectType = "Membership"

	// SubjectGrant is a stored custom permission record.
	SubjectGrant SubjectType = "Grant"

	// SubjectObject is any other group-owned domain object.
	SubjectObject SubjectType = "ResourceObject"

	// SubjectAll is the wildcard matching every subject type.
	// It is declared in rules but never requested in a check.
	SubjectAll SubjectType = "all"
)

// ParseSubjectType validates a stored subject-type tag, rejecting unknown
// tags early rather than passing opaque strings into the matcher.
func ParseSubjectType(s string) (SubjectType, error) {
	switch SubjectType(s) {
	case SubjectPrincipal, SubjectCompany, SubjectDocument,
		SubjectMembership, SubjectGrant, SubjectObject, SubjectAll:
		return SubjectType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSubjectType, s)
	}
}

// RoleTag is a static, global role held by a principal.
type RoleTag string

const (
	// RoleAdmin grants unconditional management of everything.
	RoleAdmin RoleTag = "ADMIN"

	// RoleAnalyst grants unconditional read access to everything.
	RoleAnalyst RoleTag = "ANALYST"

	// RoleUser is the baseline role; it adds nothing beyond the
	// always-emitted self rules and membership-derived rules.
	RoleUser RoleTag = "USER"
)

// rolePriority is the fixed order in which static roles are expanded.
var rolePriority = [3]RoleTag{RoleAdmin, RoleAnalyst, RoleUser}

// ParseRoleTag validates a stored role tag.
func ParseRoleTag(s string) (RoleTag, error) {
	switch RoleTag(s) {
	case RoleAdmin, RoleAnalyst, RoleUser:
		return RoleTag(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRoleTag, s)
	}
}

// Query is the input to an authorization check.
type Query struct {
	// Action is the requested CRUD action. MANAGE is not requestable.
	Action Action `json:"action"`

	// Subject is the type tag of the target entity.
	Subject SubjectType `json:"subject"`

	// Attributes is the target instance's attribute bag used for
	// condition matching. Nil means a type-level check: conditions are
	// not evaluated and any rule on the type matches.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Decision is the authorization outcome.
type Decision string

const (
	// DecisionAllow means the request is permitted.
	DecisionAllow Decision = "allow"

	// DecisionDenyExplicit means a deny rule matched last.
	DecisionDenyExplicit Decision = "deny_explicit"

	// DecisionDenyDefault means no rule matched.
	DecisionDenyDefault Decision = "deny_default"
)

// MatchInfo describes the rule that decided an evaluation.
type MatchInfo struct {
	Source string `json:"source"` // "self", "role", "membership", "grant"
	RuleID string `json:"rule_id,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of an authorization check.
type Result struct {
	Allowed    bool       `json:"allowed"`
	Decision   Decision   `json:"decision"`
	Reason     string     `json:"reason,omitempty"`
	MatchedBy  *MatchInfo `json:"matched_by,omitempty"`
	EvalTimeNs int64      `json:"eval_time_ns"`
}

// Object is implemented by domain entities that declare their own subject
// type and expose the attributes rules match against.
type Object interface {
	// AbilitySubject returns the entity's subject-type tag.
	AbilitySubject() SubjectType

	// AbilityAttributes returns the attribute bag conditions match
	// against (typically "id" and "group_id").
	AbilityAttributes() map[string]any
}
