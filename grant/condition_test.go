package grant

import "testing"

func TestAlwaysMatchesEverything(t *testing.T) {
	if !Always.Matches(map[string]any{"group_id": "grp_1"}) {
		t.Fatal("the empty condition must match any attributes")
	}
	if !Always.Matches(nil) {
		t.Fatal("the empty condition must match nil attributes")
	}
	if !Always.IsAlways() {
		t.Fatal("zero condition must report IsAlways")
	}
}

func TestEquals(t *testing.T) {
	cond := Equals("group_id", "grp_1")

	if !cond.Matches(map[string]any{"group_id": "grp_1"}) {
		t.Fatal("expected match on equal value")
	}
	if cond.Matches(map[string]any{"group_id": "grp_2"}) {
		t.Fatal("expected mismatch on different value")
	}
	if cond.Matches(map[string]any{}) {
		t.Fatal("a missing attribute must not match")
	}
}

func TestIn(t *testing.T) {
	cond := Condition{Preds: []Predicate{{
		Field: "status",
		Op:    OpIn,
		Value: []any{"draft", "open"},
	}}}

	if !cond.Matches(map[string]any{"status": "open"}) {
		t.Fatal("expected match on listed value")
	}
	if cond.Matches(map[string]any{"status": "closed"}) {
		t.Fatal("expected mismatch on unlisted value")
	}
}

func TestAllPredicatesMustHold(t *testing.T) {
	cond := Condition{Preds: []Predicate{
		{Field: "group_id", Op: OpEquals, Value: "grp_1"},
		{Field: "status", Op: OpEquals, Value: "open"},
	}}

	if !cond.Matches(map[string]any{"group_id": "grp_1", "status": "open"}) {
		t.Fatal("expected match when every predicate holds")
	}
	if cond.Matches(map[string]any{"group_id": "grp_1", "status": "closed"}) {
		t.Fatal("one failing predicate must fail the condition")
	}
}

func TestValidate(t *testing.T) {
	if err := Always.Validate(); err != nil {
		t.Fatalf("zero condition must validate: %v", err)
	}
	if err := Equals("group_id", "grp_1").Validate(); err != nil {
		t.Fatalf("eq condition must validate: %v", err)
	}

	bad := Condition{Preds: []Predicate{{Field: "group_id", Op: "gt", Value: 3}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown operator must fail validation")
	}

	noField := Condition{Preds: []Predicate{{Op: OpEquals, Value: "x"}}}
	if err := noField.Validate(); err == nil {
		t.Fatal("empty field must fail validation")
	}
}

func TestGroupScope(t *testing.T) {
	cond := GroupScope("grp_9")
	if !cond.Matches(map[string]any{"group_id": "grp_9"}) {
		t.Fatal("group scope must match its group")
	}
	if cond.Matches(map[string]any{"group_id": "grp_1"}) {
		t.Fatal("group scope must reject other groups")
	}
}
