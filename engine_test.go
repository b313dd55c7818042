package ability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
	"github.com/casetrail/ability/store/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(WithStore(s))
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

func seedPrincipal(t *testing.T, s *memory.Store, roles ...string) *principal.Principal {
	t.Helper()
	p := &principal.Principal{
		ID:        id.NewPrincipalID(),
		Email:     "staff@example.com",
		FirstName: "Staff",
		Roles:     append([]string{"USER"}, roles...),
		IsActive:  true,
	}
	if err := s.CreatePrincipal(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func seedMembership(t *testing.T, s *memory.Store, principalID id.PrincipalID, groupID string, role membership.Role) *membership.Membership {
	t.Helper()
	m := &membership.Membership{
		ID:          id.NewMembershipID(),
		PrincipalID: principalID,
		GroupID:     groupID,
		Role:        role,
	}
	if err := s.CreateMembership(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine()
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestAdminManagesEverything(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s, "ADMIN")

	for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		for _, subject := range []SubjectType{SubjectCompany, SubjectDocument, SubjectMembership, SubjectGrant, SubjectObject, SubjectPrincipal} {
			result, err := eng.Check(ctx, p.ID, Query{Action: action, Subject: subject})
			if err != nil {
				t.Fatal(err)
			}
			if !result.Allowed {
				t.Fatalf("admin denied %s on %s: %s", action, subject, result.Reason)
			}
		}
	}
}

func TestAnalystReadsEverythingButWritesNothing(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s, "ANALYST")

	result, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("analyst denied read: %s", result.Reason)
	}

	result, err = eng.Check(ctx, p.ID, Query{Action: ActionUpdate, Subject: SubjectDocument})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("analyst should not update documents")
	}
	if result.Decision != DecisionDenyDefault {
		t.Fatalf("expected deny_default, got %s", result.Decision)
	}
}

func TestSelfRules(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	other := seedOtherPrincipal(t, s)

	// A plain user may read and update its own record.
	for _, action := range []Action{ActionRead, ActionUpdate} {
		result, err := eng.Check(ctx, p.ID, Query{
			Action:     action,
			Subject:    SubjectPrincipal,
			Attributes: map[string]any{"id": p.ID.String()},
		})
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("self %s denied: %s", action, result.Reason)
		}
	}

	// But not someone else's, and never delete its own.
	result, err := eng.Check(ctx, p.ID, Query{
		Action:     ActionRead,
		Subject:    SubjectPrincipal,
		Attributes: map[string]any{"id": other.ID.String()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny reading another principal")
	}

	result, err = eng.Check(ctx, p.ID, Query{
		Action:     ActionDelete,
		Subject:    SubjectPrincipal,
		Attributes: map[string]any{"id": p.ID.String()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny deleting own record")
	}
}

func seedOtherPrincipal(t *testing.T, s *memory.Store) *principal.Principal {
	t.Helper()
	p := &principal.Principal{
		ID:        id.NewPrincipalID(),
		Email:     "other@example.com",
		FirstName: "Other",
		Roles:     []string{"USER"},
		IsActive:  true,
	}
	if err := s.CreatePrincipal(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOwnerScopedToGroup(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	seedMembership(t, s, p.ID, "grp_1", membership.RoleOwner)

	result, err := eng.Check(ctx, p.ID, Query{
		Action:     ActionDelete,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("owner denied delete in own group: %s", result.Reason)
	}

	// Same check against another group denies.
	result, err = eng.Check(ctx, p.ID, Query{
		Action:     ActionDelete,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("owner permissions must not leak across groups")
	}
}

func TestOfficerCannotTouchCompanyOrGrants(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	seedMembership(t, s, p.ID, "grp_1", membership.RoleOfficer)

	attrs := map[string]any{"group_id": "grp_1"}

	result, err := eng.Check(ctx, p.ID, Query{Action: ActionUpdate, Subject: SubjectDocument, Attributes: attrs})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("officer denied document update: %s", result.Reason)
	}

	for _, subject := range []SubjectType{SubjectCompany, SubjectGrant} {
		result, err = eng.Check(ctx, p.ID, Query{Action: ActionUpdate, Subject: subject, Attributes: attrs})
		if err != nil {
			t.Fatal(err)
		}
		if result.Allowed {
			t.Fatalf("officer should not update %s", subject)
		}
	}
}

func TestMemberIsReadOnly(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	seedMembership(t, s, p.ID, "grp_1", membership.RoleMember)

	attrs := map[string]any{"group_id": "grp_1"}

	result, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument, Attributes: attrs})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("member denied read: %s", result.Reason)
	}

	result, err = eng.Check(ctx, p.ID, Query{Action: ActionUpdate, Subject: SubjectDocument, Attributes: attrs})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("member should be read-only")
	}
}

func TestCustomGrantWidensMember(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	m := seedMembership(t, s, p.ID, "grp_1", membership.RoleMember)

	err := s.CreateGrant(ctx, &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       string(ActionUpdate),
		Subject:      string(SubjectDocument),
		Effect:       grant.EffectAllow,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := eng.Check(ctx, p.ID, Query{
		Action:     ActionUpdate,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("grant should widen member to update: %s", result.Reason)
	}
	if result.MatchedBy == nil || result.MatchedBy.Source != string(SourceGrant) {
		t.Fatalf("expected grant match, got %+v", result.MatchedBy)
	}

	// The implicit group scope still applies.
	result, err = eng.Check(ctx, p.ID, Query{
		Action:     ActionUpdate,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("grant without condition must default to group scope")
	}
}

func TestDenyGrantOverridesOwner(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	m := seedMembership(t, s, p.ID, "grp_1", membership.RoleOwner)

	err := s.CreateGrant(ctx, &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       string(ActionDelete),
		Subject:      string(SubjectDocument),
		Effect:       grant.EffectDeny,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := eng.Check(ctx, p.ID, Query{
		Action:     ActionDelete,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("deny grant declared after the role rules must win")
	}
	if result.Decision != DecisionDenyExplicit {
		t.Fatalf("expected deny_explicit, got %s", result.Decision)
	}

	// Other actions remain covered by the owner role.
	result, err = eng.Check(ctx, p.ID, Query{
		Action:     ActionUpdate,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("update should still be allowed: %s", result.Reason)
	}
}

func TestLaterGrantWins(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	m := seedMembership(t, s, p.ID, "grp_1", membership.RoleMember)

	deny := &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       string(ActionRead),
		Subject:      string(SubjectDocument),
		Effect:       grant.EffectDeny,
	}
	allow := &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       string(ActionRead),
		Subject:      string(SubjectDocument),
		Effect:       grant.EffectAllow,
	}
	if err := s.CreateGrant(ctx, deny); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateGrant(ctx, allow); err != nil {
		t.Fatal(err)
	}

	result, err := eng.Check(ctx, p.ID, Query{
		Action:     ActionRead,
		Subject:    SubjectDocument,
		Attributes: map[string]any{"group_id": "grp_1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("the later allow grant must win: %s", result.Reason)
	}
	if result.MatchedBy == nil || result.MatchedBy.RuleID != allow.ID.String() {
		t.Fatalf("expected match on grant %s, got %+v", allow.ID, result.MatchedBy)
	}
}

func TestTypeLevelCheckIgnoresConditions(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	seedMembership(t, s, p.ID, "grp_1", membership.RoleMember)

	// Nil attributes: any rule on the type matches regardless of scope.
	result, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("type-level check should match the member rule: %s", result.Reason)
	}
}

func TestManageIsNotRequestable(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s, "ADMIN")

	result, err := eng.Check(ctx, p.ID, Query{Action: ActionManage, Subject: SubjectDocument})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("MANAGE must never be requestable, even for admins")
	}
	if result.Decision != DecisionDenyDefault {
		t.Fatalf("expected deny_default, got %s", result.Decision)
	}
	if result.Reason == "" {
		t.Fatal("expected a reason on the deny")
	}
}

func TestDeactivatedPrincipalFailsResolution(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s, "ADMIN")

	if err := s.DeactivatePrincipal(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	_, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument})
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestUnknownPrincipal(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	_, err := eng.Check(ctx, id.NewPrincipalID(), Query{Action: ActionRead, Subject: SubjectDocument})
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestEnforce(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)

	err := eng.Enforce(ctx, p.ID, Query{Action: ActionDelete, Subject: SubjectDocument})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	err = eng.Enforce(ctx, p.ID, Query{
		Action:     ActionRead,
		Subject:    SubjectPrincipal,
		Attributes: map[string]any{"id": p.ID.String()},
	})
	if err != nil {
		t.Fatalf("self read should pass enforce: %v", err)
	}
}

func TestCanI(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s, "ANALYST")

	ok, err := eng.CanI(ctx, p.ID, ActionRead, SubjectCompany)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("analyst should read companies")
	}

	ok, err = eng.CanI(ctx, p.ID, ActionDelete, SubjectCompany)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("analyst should not delete companies")
	}
}

func TestDecisionLogging(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)

	if _, err := eng.Check(ctx, p.ID, Query{Action: ActionDelete, Subject: SubjectDocument}); err != nil {
		t.Fatal(err)
	}

	logs, err := s.ListCheckLogs(ctx, &checklog.QueryFilter{PrincipalID: p.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
	e := logs[0]
	if e.Track != checklog.TrackPrincipal {
		t.Fatalf("expected principal track, got %q", e.Track)
	}
	if e.Decision != string(DecisionDenyDefault) {
		t.Fatalf("expected deny_default logged, got %q", e.Decision)
	}
	if e.Action != string(ActionDelete) || e.Subject != string(SubjectDocument) {
		t.Fatalf("unexpected log entry: %+v", e)
	}
}

func TestDenialsOnlyLogging(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	denialsOnly := true
	eng, err := NewEngine(
		WithStore(s),
		WithConfig(Config{LogDenialsOnly: &denialsOnly}),
	)
	if err != nil {
		t.Fatal(err)
	}
	p := seedPrincipal(t, s, "ADMIN")

	if _, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Check(ctx, p.ID, Query{Action: ActionManage, Subject: SubjectDocument}); err != nil {
		t.Fatal(err)
	}

	logs, err := s.ListCheckLogs(ctx, &checklog.QueryFilter{PrincipalID: p.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected only the denial logged, got %d entries", len(logs))
	}
}

func TestCompileDeterminism(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s, "ANALYST")
	m := seedMembership(t, s, p.ID, "grp_1", membership.RoleOwner)
	if err := s.CreateGrant(ctx, &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       string(ActionDelete),
		Subject:      string(SubjectDocument),
		Effect:       grant.EffectDeny,
	}); err != nil {
		t.Fatal(err)
	}

	first, err := eng.CompileRules(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.CompileRules(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("rule counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Source != second[i].Source || first[i].SourceID != second[i].SourceID ||
			first[i].Action != second[i].Action || first[i].Subject != second[i].Subject {
			t.Fatalf("rule %d differs between compilations", i)
		}
	}

	// Self rules first, then the role rule, then membership rules, then the grant last.
	if first[0].Source != SourceSelf || first[1].Source != SourceSelf {
		t.Fatal("self rules must come first")
	}
	if first[2].Source != SourceRole {
		t.Fatal("role rules must follow self rules")
	}
	if first[len(first)-1].Source != SourceGrant {
		t.Fatal("grants must come last for their membership")
	}
}

func TestEvalTimeRecorded(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)

	start := time.Now()
	result, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument})
	if err != nil {
		t.Fatal(err)
	}
	if result.EvalTimeNs <= 0 {
		t.Fatal("expected positive evaluation time")
	}
	if result.EvalTimeNs > time.Since(start).Nanoseconds() {
		t.Fatal("evaluation time exceeds wall time")
	}
}

type failingHookPlugin struct{}

func (failingHookPlugin) Name() string { return "failing-hook" }

func (failingHookPlugin) OnBeforeCheck(context.Context, string, any) error {
	return errors.New("hook failed")
}

func TestPluginRegistryUsesConfiguredLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// WithPlugin before WithLogger: the registry must still log hook
	// errors through the configured logger.
	s := memory.New()
	eng, err := NewEngine(WithStore(s), WithPlugin(failingHookPlugin{}), WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	p := seedPrincipal(t, s)

	if _, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "plugin hook error") {
		t.Fatalf("expected hook error on configured logger, got: %q", buf.String())
	}
}

func TestCompileOrderStableWhenTimestampsCollide(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)

	// Both memberships carry the zero CreatedAt, so ordering must fall
	// back to the ID tiebreak instead of map iteration order.
	seedMembership(t, s, p.ID, "group-1", membership.RoleMember)
	seedMembership(t, s, p.ID, "group-2", membership.RoleOfficer)

	first, err := eng.CompileRules(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		again, err := eng.CompileRules(ctx, p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("call %d: %d rules, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].SourceID != first[j].SourceID {
				t.Fatalf("call %d: rule %d differs: %s vs %s", i, j, again[j].SourceID, first[j].SourceID)
			}
		}
	}
}

func TestUnknownStoredActionFailsCompilation(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	m := seedMembership(t, s, p.ID, "group-1", membership.RoleMember)

	g := &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       "ARCHIVE",
		Subject:      string(SubjectDocument),
		Effect:       grant.EffectAllow,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	_, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument})
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestUnknownStoredRoleFailsCompilation(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	p := seedPrincipal(t, s)
	seedMembership(t, s, p.ID, "group-1", membership.Role("SUPERVISOR"))

	_, err := eng.Check(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument})
	if !errors.Is(err, ErrUnknownRoleTag) {
		t.Fatalf("expected ErrUnknownRoleTag, got %v", err)
	}
}
