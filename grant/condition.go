package grant

import "fmt"

// Op is a condition predicate operator. The set is closed: field-equals
// and field-in-set are the only supported predicates, and the empty
// condition is the always-true case.
type Op string

const (
	// OpEquals matches when the instance field equals the value.
	OpEquals Op = "eq"

	// OpIn matches when the instance field is one of the listed values.
	OpIn Op = "in"
)

// Predicate is a single field comparison within a condition.
type Predicate struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// Condition restricts a rule to instances whose attributes satisfy every
// predicate. The zero value matches everything.
type Condition struct {
	Preds []Predicate `json:"preds,omitempty"`
}

// Always is the condition that matches every instance.
var Always = Condition{}

// Equals builds a single field-equals condition.
func Equals(field string, value any) Condition {
	return Condition{Preds: []Predicate{{Field: field, Op: OpEquals, Value: value}}}
}

// In builds a single field-in-set condition.
func In(field string, values ...any) Condition {
	return Condition{Preds: []Predicate{{Field: field, Op: OpIn, Value: values}}}
}

// GroupScope is the default condition for membership-derived rules:
// the instance must belong to the membership's resource group.
func GroupScope(groupID string) Condition {
	return Equals("group_id", groupID)
}

// IsAlways reports whether the condition has no predicates.
func (c Condition) IsAlways() bool { return len(c.Preds) == 0 }

// Matches evaluates the condition against an instance attribute bag.
// Every predicate must hold; the empty condition matches everything.
// Comparison is structural equality on the stringified values, mirroring
// sub-document equality matching, not a query language.
func (c Condition) Matches(attrs map[string]any) bool {
	for _, p := range c.Preds {
		actual, ok := attrs[p.Field]
		switch p.Op {
		case OpEquals:
			if !ok || fmt.Sprint(actual) != fmt.Sprint(p.Value) {
				return false
			}
		case OpIn:
			if !ok || !inSet(actual, p.Value) {
				return false
			}
		default:
			// Unknown operators never match. Compilation validates
			// stored conditions, so this only guards hand-built rules.
			return false
		}
	}
	return true
}

// Validate rejects malformed conditions: empty field names or unknown
// operators. Stored conditions are validated at compile time so opaque
// data never reaches the matcher.
func (c Condition) Validate() error {
	for _, p := range c.Preds {
		if p.Field == "" {
			return fmt.Errorf("grant: condition predicate with empty field")
		}
		switch p.Op {
		case OpEquals, OpIn:
		default:
			return fmt.Errorf("grant: unknown condition operator %q", p.Op)
		}
	}
	return nil
}

func inSet(actual, expected any) bool {
	s := fmt.Sprint(actual)
	switch v := expected.(type) {
	case []string:
		for _, item := range v {
			if item == s {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if fmt.Sprint(item) == s {
				return true
			}
		}
	}
	return false
}
