// Package memory provides an in-memory implementation of the composite
// store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
	"github.com/casetrail/ability/store"
)

// Compile-time interface checks.
var (
	_ principal.Store  = (*Store)(nil)
	_ membership.Store = (*Store)(nil)
	_ grant.Store      = (*Store)(nil)
	_ applicant.Store  = (*Store)(nil)
	_ checklog.Store   = (*Store)(nil)
	_ store.Store      = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all ability entities.
type Store struct {
	mu sync.RWMutex

	principals  map[string]*principal.Principal
	memberships map[string]*membership.Membership
	grants      map[string]*grant.Grant
	applicants  map[string]*applicant.Applicant
	checkLogs   map[string]*checklog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		principals:  make(map[string]*principal.Principal),
		memberships: make(map[string]*membership.Membership),
		grants:      make(map[string]*grant.Grant),
		applicants:  make(map[string]*applicant.Applicant),
		checkLogs:   make(map[string]*checklog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Principal Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePrincipal(_ context.Context, p *principal.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.principals {
		if strings.EqualFold(existing.Email, p.Email) {
			return fmt.Errorf("principal email %q: %w", p.Email, store.ErrDuplicate)
		}
	}
	s.principals[p.ID.String()] = copyPrincipal(p)
	return nil
}

func (s *Store) GetPrincipal(_ context.Context, principalID id.PrincipalID) (*principal.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[principalID.String()]
	if !ok {
		return nil, fmt.Errorf("principal %s: %w", principalID, store.ErrNotFound)
	}
	return copyPrincipal(p), nil
}

func (s *Store) GetPrincipalByEmail(_ context.Context, email string) (*principal.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.principals {
		if strings.EqualFold(p.Email, email) {
			return copyPrincipal(p), nil
		}
	}
	return nil, fmt.Errorf("principal email %q: %w", email, store.ErrNotFound)
}

func (s *Store) UpdatePrincipal(_ context.Context, p *principal.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.principals[p.ID.String()]
	if !ok {
		return fmt.Errorf("principal %s: %w", p.ID, store.ErrNotFound)
	}
	c := copyPrincipal(p)
	c.Roles = append([]string(nil), existing.Roles...) // roles change via SetPrincipalRoles
	s.principals[p.ID.String()] = c
	return nil
}

func (s *Store) SetPrincipalRoles(_ context.Context, principalID id.PrincipalID, roles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[principalID.String()]
	if !ok {
		return fmt.Errorf("principal %s: %w", principalID, store.ErrNotFound)
	}
	p.Roles = append([]string(nil), roles...)
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DeactivatePrincipal(_ context.Context, principalID id.PrincipalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[principalID.String()]
	if !ok {
		return fmt.Errorf("principal %s: %w", principalID, store.ErrNotFound)
	}
	now := time.Now()
	p.IsActive = false
	p.DeactivatedAt = &now
	p.UpdatedAt = now
	return nil
}

func (s *Store) ListPrincipals(_ context.Context, filter *principal.ListFilter) ([]*principal.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*principal.Principal, 0, len(s.principals))
	for _, p := range s.principals {
		if !matchPrincipal(p, filter) {
			continue
		}
		result = append(result, copyPrincipal(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountPrincipals(_ context.Context, filter *principal.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.principals {
		if matchPrincipal(p, filter) {
			n++
		}
	}
	return n, nil
}

func matchPrincipal(p *principal.Principal, filter *principal.ListFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Role != "" {
		held := false
		for _, r := range p.Roles {
			if r == filter.Role {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	if filter.IsActive != nil && p.IsActive != *filter.IsActive {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		hay := strings.ToLower(p.Email + " " + p.FirstName + " " + p.LastName)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────
// Membership Store
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(_ context.Context, m *membership.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing.PrincipalID.String() == m.PrincipalID.String() && existing.GroupID == m.GroupID {
			return fmt.Errorf("membership %s/%s: %w", m.PrincipalID, m.GroupID, store.ErrDuplicate)
		}
	}
	s.memberships[m.ID.String()] = copyMembership(m)
	return nil
}

func (s *Store) GetMembership(_ context.Context, membershipID id.MembershipID) (*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[membershipID.String()]
	if !ok {
		return nil, fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
	}
	return copyMembership(m), nil
}

func (s *Store) GetMembershipByPrincipalAndGroup(_ context.Context, principalID id.PrincipalID, groupID string) (*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.PrincipalID.String() == principalID.String() && m.GroupID == groupID {
			return copyMembership(m), nil
		}
	}
	return nil, fmt.Errorf("membership %s/%s: %w", principalID, groupID, store.ErrNotFound)
}

func (s *Store) SetMembershipRole(_ context.Context, membershipID id.MembershipID, role membership.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[membershipID.String()]
	if !ok {
		return fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DeleteMembership(_ context.Context, membershipID id.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[membershipID.String()]; !ok {
		return fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
	}
	delete(s.memberships, membershipID.String())
	s.deleteGrantsLocked(membershipID)
	return nil
}

func (s *Store) ListMembershipsForPrincipal(_ context.Context, principalID id.PrincipalID) ([]*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*membership.Membership
	for _, m := range s.memberships {
		if m.PrincipalID.String() == principalID.String() {
			result = append(result, copyMembership(m))
		}
	}
	sortMemberships(result)
	return result, nil
}

func (s *Store) ListMemberships(_ context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*membership.Membership, 0, len(s.memberships))
	for _, m := range s.memberships {
		if !matchMembership(m, filter) {
			continue
		}
		result = append(result, copyMembership(m))
	}
	sortMemberships(result)
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountMemberships(_ context.Context, filter *membership.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.memberships {
		if matchMembership(m, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteMembershipsByGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, m := range s.memberships {
		if m.GroupID == groupID {
			delete(s.memberships, key)
			s.deleteGrantsLocked(m.ID)
		}
	}
	return nil
}

// sortMemberships orders by creation time, tiebroken on ID so the order
// is stable when timestamps collide. TypeIDs are K-sortable, so the
// tiebreak still reflects creation order.
func sortMemberships(result []*membership.Membership) {
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
}

func matchMembership(m *membership.Membership, filter *membership.ListFilter) bool {
	if filter == nil {
		return true
	}
	if filter.PrincipalID != nil && m.PrincipalID.String() != filter.PrincipalID.String() {
		return false
	}
	if filter.GroupID != "" && m.GroupID != filter.GroupID {
		return false
	}
	if filter.Role != "" && m.Role != filter.Role {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Grant Store
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[g.MembershipID.String()]; !ok {
		return fmt.Errorf("membership %s: %w", g.MembershipID, store.ErrNotFound)
	}
	// Append to the membership's declaration order.
	next := 0
	for _, existing := range s.grants {
		if existing.MembershipID.String() == g.MembershipID.String() && existing.Position >= next {
			next = existing.Position + 1
		}
	}
	g.Position = next
	s.grants[g.ID.String()] = copyGrant(g)
	return nil
}

func (s *Store) GetGrant(_ context.Context, grantID id.GrantID) (*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[grantID.String()]
	if !ok {
		return nil, fmt.Errorf("grant %s: %w", grantID, store.ErrNotFound)
	}
	return copyGrant(g), nil
}

func (s *Store) UpdateGrant(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.grants[g.ID.String()]
	if !ok {
		return fmt.Errorf("grant %s: %w", g.ID, store.ErrNotFound)
	}
	c := copyGrant(g)
	c.Position = existing.Position // declaration order is fixed at creation
	s.grants[g.ID.String()] = c
	return nil
}

func (s *Store) DeleteGrant(_ context.Context, grantID id.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[grantID.String()]; !ok {
		return fmt.Errorf("grant %s: %w", grantID, store.ErrNotFound)
	}
	delete(s.grants, grantID.String())
	return nil
}

func (s *Store) ListGrantsForMembership(_ context.Context, membershipID id.MembershipID) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*grant.Grant
	for _, g := range s.grants {
		if g.MembershipID.String() == membershipID.String() {
			result = append(result, copyGrant(g))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (s *Store) ListGrants(_ context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*grant.Grant, 0, len(s.grants))
	for _, g := range s.grants {
		if !matchGrant(g, filter) {
			continue
		}
		result = append(result, copyGrant(g))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MembershipID.String() != result[j].MembershipID.String() {
			return result[i].MembershipID.String() < result[j].MembershipID.String()
		}
		return result[i].Position < result[j].Position
	})
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountGrants(_ context.Context, filter *grant.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, g := range s.grants {
		if matchGrant(g, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteGrantsByMembership(_ context.Context, membershipID id.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteGrantsLocked(membershipID)
	return nil
}

// deleteGrantsLocked removes a membership's grants. Callers hold s.mu.
func (s *Store) deleteGrantsLocked(membershipID id.MembershipID) {
	for key, g := range s.grants {
		if g.MembershipID.String() == membershipID.String() {
			delete(s.grants, key)
		}
	}
}

func matchGrant(g *grant.Grant, filter *grant.ListFilter) bool {
	if filter == nil {
		return true
	}
	if filter.MembershipID != nil && g.MembershipID.String() != filter.MembershipID.String() {
		return false
	}
	if filter.Subject != "" && g.Subject != filter.Subject {
		return false
	}
	if filter.Effect != "" && g.Effect != filter.Effect {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Applicant Store
// ──────────────────────────────────────────────────

func (s *Store) CreateApplicant(_ context.Context, a *applicant.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.applicants {
		if existing.Telephone == a.Telephone {
			return fmt.Errorf("applicant telephone %q: %w", a.Telephone, store.ErrDuplicate)
		}
	}
	s.applicants[a.ID.String()] = copyApplicant(a)
	return nil
}

func (s *Store) GetApplicant(_ context.Context, applicantID id.ApplicantID) (*applicant.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applicants[applicantID.String()]
	if !ok {
		return nil, fmt.Errorf("applicant %s: %w", applicantID, store.ErrNotFound)
	}
	return copyApplicant(a), nil
}

func (s *Store) GetApplicantByTelephone(_ context.Context, telephone string) (*applicant.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applicants {
		if a.Telephone == telephone {
			return copyApplicant(a), nil
		}
	}
	return nil, fmt.Errorf("applicant telephone %q: %w", telephone, store.ErrNotFound)
}

func (s *Store) UpdateApplicant(_ context.Context, a *applicant.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applicants[a.ID.String()]; !ok {
		return fmt.Errorf("applicant %s: %w", a.ID, store.ErrNotFound)
	}
	s.applicants[a.ID.String()] = copyApplicant(a)
	return nil
}

func (s *Store) DeactivateApplicant(_ context.Context, applicantID id.ApplicantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[applicantID.String()]
	if !ok {
		return fmt.Errorf("applicant %s: %w", applicantID, store.ErrNotFound)
	}
	now := time.Now()
	a.IsActive = false
	a.DeactivatedAt = &now
	a.UpdatedAt = now
	return nil
}

func (s *Store) ListApplicants(_ context.Context, filter *applicant.ListFilter) ([]*applicant.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*applicant.Applicant, 0, len(s.applicants))
	for _, a := range s.applicants {
		if !matchApplicant(a, filter) {
			continue
		}
		result = append(result, copyApplicant(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountApplicants(_ context.Context, filter *applicant.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, a := range s.applicants {
		if matchApplicant(a, filter) {
			n++
		}
	}
	return n, nil
}

func matchApplicant(a *applicant.Applicant, filter *applicant.ListFilter) bool {
	if filter == nil {
		return true
	}
	if filter.IsActive != nil && a.IsActive != *filter.IsActive {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		hay := strings.ToLower(a.Telephone + " " + a.Email + " " + a.FirstName + " " + a.LastName)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────
// CheckLog Store
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(_ context.Context, e *checklog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkLogs[e.ID.String()] = copyCheckLog(e)
	return nil
}

func (s *Store) GetCheckLog(_ context.Context, logID id.DecisionLogID) (*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.checkLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("check log %s: %w", logID, store.ErrNotFound)
	}
	return copyCheckLog(e), nil
}

func (s *Store) ListCheckLogs(_ context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*checklog.Entry, 0, len(s.checkLogs))
	for _, e := range s.checkLogs {
		if !matchCheckLog(e, filter) {
			continue
		}
		result = append(result, copyCheckLog(e))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountCheckLogs(_ context.Context, filter *checklog.QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.checkLogs {
		if matchCheckLog(e, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) PurgeCheckLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, e := range s.checkLogs {
		if e.CreatedAt.Before(before) {
			delete(s.checkLogs, key)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteCheckLogsByPrincipal(_ context.Context, track, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.checkLogs {
		if e.Track == track && e.PrincipalID == principalID {
			delete(s.checkLogs, key)
		}
	}
	return nil
}

func matchCheckLog(e *checklog.Entry, filter *checklog.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Track != "" && e.Track != filter.Track {
		return false
	}
	if filter.PrincipalID != "" && e.PrincipalID != filter.PrincipalID {
		return false
	}
	if filter.Action != "" && e.Action != filter.Action {
		return false
	}
	if filter.Subject != "" && e.Subject != filter.Subject {
		return false
	}
	if filter.GroupID != "" && e.GroupID != filter.GroupID {
		return false
	}
	if filter.Decision != "" && e.Decision != filter.Decision {
		return false
	}
	if filter.After != nil && !e.CreatedAt.After(*filter.After) {
		return false
	}
	if filter.Before != nil && !e.CreatedAt.Before(*filter.Before) {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Copy and pagination helpers
// ──────────────────────────────────────────────────

// Defensive copies keep callers from mutating stored state.

func copyPrincipal(p *principal.Principal) *principal.Principal {
	c := *p
	c.Roles = append([]string(nil), p.Roles...)
	if p.Metadata != nil {
		c.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func copyMembership(m *membership.Membership) *membership.Membership {
	c := *m
	if m.Metadata != nil {
		c.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func copyGrant(g *grant.Grant) *grant.Grant {
	c := *g
	c.Condition.Preds = append([]grant.Predicate(nil), g.Condition.Preds...)
	return &c
}

func copyApplicant(a *applicant.Applicant) *applicant.Applicant {
	c := *a
	return &c
}

func copyCheckLog(e *checklog.Entry) *checklog.Entry {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}
