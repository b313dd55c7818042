package ability

import (
	"testing"

	"github.com/casetrail/ability/grant"
)

func TestActionCovers(t *testing.T) {
	if !ActionManage.Covers(ActionDelete) {
		t.Fatal("MANAGE must cover DELETE")
	}
	if !ActionRead.Covers(ActionRead) {
		t.Fatal("an action covers itself")
	}
	if ActionRead.Covers(ActionUpdate) {
		t.Fatal("READ must not cover UPDATE")
	}
	if ActionDelete.Covers(ActionManage) {
		t.Fatal("a CRUD action must not cover MANAGE")
	}
}

func TestEvaluatorNoMatchIsDenyDefault(t *testing.T) {
	ev := DefaultEvaluator()

	result := ev.Evaluate(RuleList{}, Query{Action: ActionRead, Subject: SubjectDocument})
	if result.Allowed {
		t.Fatal("empty rule list must deny")
	}
	if result.Decision != DecisionDenyDefault {
		t.Fatalf("expected deny_default, got %s", result.Decision)
	}
	if result.MatchedBy != nil {
		t.Fatal("no rule matched; MatchedBy must be nil")
	}
}

func TestEvaluatorLastMatchWins(t *testing.T) {
	ev := DefaultEvaluator()
	rules := RuleList{
		{Action: ActionRead, Subject: SubjectDocument, Effect: grant.EffectAllow, Source: SourceRole, SourceID: "first"},
		{Action: ActionRead, Subject: SubjectDocument, Effect: grant.EffectDeny, Source: SourceGrant, SourceID: "second"},
	}

	result := ev.Evaluate(rules, Query{Action: ActionRead, Subject: SubjectDocument})
	if result.Allowed {
		t.Fatal("the later deny must win")
	}
	if result.Decision != DecisionDenyExplicit {
		t.Fatalf("expected deny_explicit, got %s", result.Decision)
	}
	if result.MatchedBy == nil || result.MatchedBy.RuleID != "second" {
		t.Fatalf("expected the second rule to decide, got %+v", result.MatchedBy)
	}
}

func TestEvaluatorWildcardSubject(t *testing.T) {
	ev := DefaultEvaluator()
	rules := RuleList{
		{Action: ActionManage, Subject: SubjectAll, Effect: grant.EffectAllow, Source: SourceRole, SourceID: "ADMIN"},
	}

	for _, subject := range []SubjectType{SubjectDocument, SubjectCompany, SubjectPrincipal} {
		result := ev.Evaluate(rules, Query{Action: ActionDelete, Subject: subject})
		if !result.Allowed {
			t.Fatalf("wildcard rule should cover %s: %s", subject, result.Reason)
		}
	}
}

func TestEvaluatorConditionMatching(t *testing.T) {
	ev := DefaultEvaluator()
	rules := RuleList{
		{
			Action:    ActionRead,
			Subject:   SubjectDocument,
			Effect:    grant.EffectAllow,
			Condition: grant.GroupScope("grp_1"),
			Source:    SourceMembership,
			SourceID:  "m1",
		},
	}

	result := ev.Evaluate(rules, Query{
		Action:     ActionRead,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_1"},
	})
	if !result.Allowed {
		t.Fatalf("matching group should allow: %s", result.Reason)
	}

	result = ev.Evaluate(rules, Query{
		Action:     ActionRead,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_2"},
	})
	if result.Allowed {
		t.Fatal("non-matching group must deny")
	}

	// Nil attributes skip condition evaluation entirely.
	result = ev.Evaluate(rules, Query{Action: ActionRead, Subject: SubjectDocument})
	if !result.Allowed {
		t.Fatalf("type-level check must ignore conditions: %s", result.Reason)
	}
}

func TestEvaluatorRejectsNonRequestableAction(t *testing.T) {
	ev := DefaultEvaluator()
	rules := RuleList{
		{Action: ActionManage, Subject: SubjectAll, Effect: grant.EffectAllow, Source: SourceRole, SourceID: "ADMIN"},
	}

	result := ev.Evaluate(rules, Query{Action: ActionManage, Subject: SubjectDocument})
	if result.Allowed {
		t.Fatal("MANAGE queries must be rejected before the scan")
	}
	if result.Decision != DecisionDenyDefault {
		t.Fatalf("expected deny_default, got %s", result.Decision)
	}
}

func TestRuleListAllows(t *testing.T) {
	rules := RuleList{
		{Action: ActionRead, Subject: SubjectDocument, Effect: grant.EffectAllow, Source: SourceRole, SourceID: "ANALYST"},
	}

	if !rules.Allows(Query{Action: ActionRead, Subject: SubjectDocument}) {
		t.Fatal("expected allow")
	}
	if rules.Allows(Query{Action: ActionUpdate, Subject: SubjectDocument}) {
		t.Fatal("expected deny")
	}
}
