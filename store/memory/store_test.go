package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
	"github.com/casetrail/ability/store"
)

func seedPrincipal(t *testing.T, s *Store, email string) *principal.Principal {
	t.Helper()
	p := &principal.Principal{
		ID:        id.NewPrincipalID(),
		Email:     email,
		FirstName: "Test",
		Roles:     []string{"USER"},
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.CreatePrincipal(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func seedMembership(t *testing.T, s *Store, principalID id.PrincipalID, groupID string) *membership.Membership {
	t.Helper()
	m := &membership.Membership{
		ID:          id.NewMembershipID(),
		PrincipalID: principalID,
		GroupID:     groupID,
		Role:        membership.RoleMember,
		CreatedAt:   time.Now(),
	}
	if err := s.CreateMembership(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedPrincipal(t, s, "a@example.com")

	err := s.CreatePrincipal(ctx, &principal.Principal{
		ID:    id.NewPrincipalID(),
		Email: "A@Example.com",
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for case-insensitive email, got %v", err)
	}
}

func TestDuplicateMembershipRejected(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPrincipal(t, s, "a@example.com")
	seedMembership(t, s, p.ID, "grp_1")

	err := s.CreateMembership(ctx, &membership.Membership{
		ID:          id.NewMembershipID(),
		PrincipalID: p.ID,
		GroupID:     "grp_1",
		Role:        membership.RoleOwner,
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second membership in same group, got %v", err)
	}

	// A different group is fine.
	if err := s.CreateMembership(ctx, &membership.Membership{
		ID:          id.NewMembershipID(),
		PrincipalID: p.ID,
		GroupID:     "grp_2",
		Role:        membership.RoleOwner,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestDuplicateTelephoneRejected(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.CreateApplicant(ctx, &applicant.Applicant{
		ID:        id.NewApplicantID(),
		Telephone: "+15550100",
		IsActive:  true,
	}); err != nil {
		t.Fatal(err)
	}

	err := s.CreateApplicant(ctx, &applicant.Applicant{
		ID:        id.NewApplicantID(),
		Telephone: "+15550100",
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGrantOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPrincipal(t, s, "a@example.com")
	m := seedMembership(t, s, p.ID, "grp_1")

	var ids []string
	for i := 0; i < 3; i++ {
		g := &grant.Grant{
			ID:           id.NewGrantID(),
			MembershipID: m.ID,
			Action:       "READ",
			Subject:      "Document",
			Effect:       grant.EffectAllow,
		}
		if err := s.CreateGrant(ctx, g); err != nil {
			t.Fatal(err)
		}
		if g.Position != i {
			t.Fatalf("expected position %d, got %d", i, g.Position)
		}
		ids = append(ids, g.ID.String())
	}

	grants, err := s.ListGrantsForMembership(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(grants) != 3 {
		t.Fatalf("expected 3 grants, got %d", len(grants))
	}
	for i, g := range grants {
		if g.ID.String() != ids[i] {
			t.Fatalf("grants out of declaration order at %d", i)
		}
	}
}

func TestUpdateGrantPreservesPosition(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPrincipal(t, s, "a@example.com")
	m := seedMembership(t, s, p.ID, "grp_1")

	g := &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       "READ",
		Subject:      "Document",
		Effect:       grant.EffectAllow,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	g.Effect = grant.EffectDeny
	g.Position = 99
	if err := s.UpdateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetGrant(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != 0 {
		t.Fatalf("update must not move the grant, got position %d", got.Position)
	}
	if got.Effect != grant.EffectDeny {
		t.Fatalf("effect update lost, got %s", got.Effect)
	}
}

func TestDeleteMembershipCascadesGrants(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPrincipal(t, s, "a@example.com")
	m := seedMembership(t, s, p.ID, "grp_1")

	g := &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: m.ID,
		Action:       "READ",
		Subject:      "Document",
		Effect:       grant.EffectAllow,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteMembership(ctx, m.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetGrant(ctx, g.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected cascaded grant deletion, got %v", err)
	}
	if _, err := s.GetMembership(ctx, m.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected membership gone, got %v", err)
	}
}

func TestMembershipOrderingByCreation(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPrincipal(t, s, "a@example.com")

	first := &membership.Membership{
		ID: id.NewMembershipID(), PrincipalID: p.ID, GroupID: "grp_1",
		Role: membership.RoleMember, CreatedAt: time.Now().Add(-time.Hour),
	}
	second := &membership.Membership{
		ID: id.NewMembershipID(), PrincipalID: p.ID, GroupID: "grp_2",
		Role: membership.RoleOwner, CreatedAt: time.Now(),
	}
	// Insert newest first; listing must still be oldest first.
	if err := s.CreateMembership(ctx, second); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateMembership(ctx, first); err != nil {
		t.Fatal(err)
	}

	memberships, err := s.ListMembershipsForPrincipal(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(memberships))
	}
	if memberships[0].GroupID != "grp_1" {
		t.Fatal("memberships must order by creation time")
	}
}

func TestSetPrincipalRoles(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPrincipal(t, s, "a@example.com")

	if err := s.SetPrincipalRoles(ctx, p.ID, []string{"ADMIN"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPrincipal(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "ADMIN" {
		t.Fatalf("unexpected roles %v", got.Roles)
	}

	// UpdatePrincipal must not clobber roles.
	got.Roles = []string{"USER"}
	got.FirstName = "Renamed"
	if err := s.UpdatePrincipal(ctx, got); err != nil {
		t.Fatal(err)
	}
	again, err := s.GetPrincipal(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.FirstName != "Renamed" {
		t.Fatal("update lost")
	}
	if len(again.Roles) != 1 || again.Roles[0] != "ADMIN" {
		t.Fatalf("roles must only change via SetPrincipalRoles, got %v", again.Roles)
	}
}

func TestPurgeCheckLogs(t *testing.T) {
	ctx := context.Background()
	s := New()

	old := &checklog.Entry{
		ID:        id.NewDecisionLogID(),
		Track:     checklog.TrackPrincipal,
		Decision:  "allow",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	recent := &checklog.Entry{
		ID:        id.NewDecisionLogID(),
		Track:     checklog.TrackPrincipal,
		Decision:  "allow",
		CreatedAt: time.Now(),
	}
	if err := s.CreateCheckLog(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCheckLog(ctx, recent); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.PurgeCheckLogs(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 purged, got %d", deleted)
	}

	remaining, err := s.ListCheckLogs(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].ID.String() != recent.ID.String() {
		t.Fatal("recent entry must survive the purge")
	}
}

func TestListPrincipalsFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	admin := seedPrincipal(t, s, "admin@example.com")
	if err := s.SetPrincipalRoles(ctx, admin.ID, []string{"ADMIN"}); err != nil {
		t.Fatal(err)
	}
	seedPrincipal(t, s, "user@example.com")

	admins, err := s.ListPrincipals(ctx, &principal.ListFilter{Role: "ADMIN"})
	if err != nil {
		t.Fatal(err)
	}
	if len(admins) != 1 || admins[0].ID.String() != admin.ID.String() {
		t.Fatalf("expected the admin only, got %d results", len(admins))
	}

	count, err := s.CountPrincipals(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 principals, got %d", count)
	}
}

func TestDefensiveCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPrincipal(t, s, "a@example.com")

	got, err := s.GetPrincipal(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Email = "mutated@example.com"

	again, err := s.GetPrincipal(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Email != "a@example.com" {
		t.Fatal("store must hand out copies, not shared pointers")
	}
}
