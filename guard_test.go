package ability

import (
	"context"
	"errors"
	"testing"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/store/memory"
)

func seedApplicant(t *testing.T, s *memory.Store) *applicant.Applicant {
	t.Helper()
	a := &applicant.Applicant{
		ID:        id.NewApplicantID(),
		Telephone: "+15550100",
		IsActive:  true,
	}
	if err := s.CreateApplicant(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestGuardAuthorize(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	g := NewGuard(eng)
	p := seedPrincipal(t, s, "ANALYST")

	authed, err := g.Authorize(ctx, p.ID, Query{Action: ActionRead, Subject: SubjectDocument})
	if err != nil {
		t.Fatal(err)
	}

	got := PrincipalFromContext(authed)
	if got == nil || got.ID.String() != p.ID.String() {
		t.Fatal("expected principal in authorized context")
	}
	if rules := RulesFromContext(authed); len(rules) == 0 {
		t.Fatal("expected compiled rules in authorized context")
	}
}

func TestGuardAuthorizeDenied(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	g := NewGuard(eng)
	p := seedPrincipal(t, s)

	_, err := g.Authorize(ctx, p.ID, Query{Action: ActionDelete, Subject: SubjectCompany})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestGuardUnknownPrincipalIsUnauthorized(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	g := NewGuard(eng)

	_, err := g.Authorize(ctx, id.NewPrincipalID(), Query{Action: ActionRead, Subject: SubjectDocument})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if errors.Is(err, ErrAccessDenied) {
		t.Fatal("missing identity must not read as a 403")
	}
}

func TestGuardIdentify(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	g := NewGuard(eng)
	p := seedPrincipal(t, s)

	authed, err := g.Identify(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if PrincipalFromContext(authed) == nil {
		t.Fatal("expected principal in context")
	}
}

func TestApplicantTrackSelfOnly(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	g := NewGuard(eng)
	a := seedApplicant(t, s)

	authed, err := g.AuthorizeApplicant(ctx, a.ID, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := ApplicantFromContext(authed)
	if got == nil || got.ID.String() != a.ID.String() {
		t.Fatal("expected applicant in authorized context")
	}

	// Another applicant's records are off limits regardless of any rules.
	_, err = g.AuthorizeApplicant(ctx, a.ID, id.NewApplicantID())
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied on mismatch, got %v", err)
	}
}

func TestApplicantTrackUnknownIsUnauthorized(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	g := NewGuard(eng)

	unknown := id.NewApplicantID()
	_, err := g.AuthorizeApplicant(ctx, unknown, unknown)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestApplicantTrackDeactivated(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	g := NewGuard(eng)
	a := seedApplicant(t, s)

	if err := s.DeactivateApplicant(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	_, err := g.AuthorizeApplicant(ctx, a.ID, a.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for deactivated applicant, got %v", err)
	}
}

func TestApplicantDecisionsLoggedOnApplicantTrack(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	g := NewGuard(eng)
	a := seedApplicant(t, s)

	if _, err := g.AuthorizeApplicant(ctx, a.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	logs, err := s.ListCheckLogs(ctx, &checklog.QueryFilter{Track: checklog.TrackApplicant})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 applicant log entry, got %d", len(logs))
	}
	if logs[0].PrincipalID != a.ID.String() {
		t.Fatalf("unexpected caller ID in log: %q", logs[0].PrincipalID)
	}
}

func TestContextAccessorsOnBareContext(t *testing.T) {
	ctx := context.Background()
	if PrincipalFromContext(ctx) != nil {
		t.Fatal("expected nil principal on bare context")
	}
	if ApplicantFromContext(ctx) != nil {
		t.Fatal("expected nil applicant on bare context")
	}
	if RulesFromContext(ctx) != nil {
		t.Fatal("expected nil rules on bare context")
	}
}
