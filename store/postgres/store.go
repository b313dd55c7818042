// Package postgres provides a PostgreSQL implementation of the composite
// store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
	"github.com/casetrail/ability/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// pgUniqueViolation is the Postgres error code for unique constraint hits.
const pgUniqueViolation = "23505"

// Store is a PostgreSQL implementation of the composite ability store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("ability: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("ability: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation, so it can surface as store.ErrDuplicate.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ──────────────────────────────────────────────────
// Principal operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePrincipal(ctx context.Context, p *principal.Principal) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m := principalToModel(p)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("principal email %q: %w", p.Email, store.ErrDuplicate)
		}
		return fmt.Errorf("ability: create principal: %w", err)
	}
	return nil
}

func (s *Store) GetPrincipal(ctx context.Context, principalID id.PrincipalID) (*principal.Principal, error) {
	m := new(principalModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", principalID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("principal %s: %w", principalID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get principal: %w", err)
	}
	return principalFromModel(m), nil
}

func (s *Store) GetPrincipalByEmail(ctx context.Context, email string) (*principal.Principal, error) {
	m := new(principalModel)
	err := s.pgdb.NewSelect(m).Where("LOWER(email) = LOWER(?)", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("principal email %q: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get principal by email: %w", err)
	}
	return principalFromModel(m), nil
}

func (s *Store) UpdatePrincipal(ctx context.Context, p *principal.Principal) error {
	existing, err := s.GetPrincipal(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Roles = existing.Roles // roles change via SetPrincipalRoles
	p.UpdatedAt = time.Now().UTC()
	m := principalToModel(p)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ability: update principal: %w", err)
	}
	return nil
}

func (s *Store) SetPrincipalRoles(ctx context.Context, principalID id.PrincipalID, roles []string) error {
	p, err := s.GetPrincipal(ctx, principalID)
	if err != nil {
		return err
	}
	p.Roles = roles
	p.UpdatedAt = time.Now().UTC()
	m := principalToModel(p)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ability: set principal roles: %w", err)
	}
	return nil
}

func (s *Store) DeactivatePrincipal(ctx context.Context, principalID id.PrincipalID) error {
	p, err := s.GetPrincipal(ctx, principalID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.IsActive = false
	p.DeactivatedAt = &now
	p.UpdatedAt = now
	m := principalToModel(p)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ability: deactivate principal: %w", err)
	}
	return nil
}

func (s *Store) ListPrincipals(ctx context.Context, filter *principal.ListFilter) ([]*principal.Principal, error) {
	var models []principalModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.Role != "" {
			q = q.Where("roles @> ?", `["`+filter.Role+`"]`)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			q = q.Where("(LOWER(email) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?))",
				"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ability: list principals: %w", err)
	}
	result := make([]*principal.Principal, len(models))
	for i := range models {
		result[i] = principalFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPrincipals(ctx context.Context, filter *principal.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*principalModel)(nil))
	if filter != nil {
		if filter.Role != "" {
			q = q.Where("roles @> ?", `["`+filter.Role+`"]`)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			q = q.Where("(LOWER(email) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?))",
				"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count principals: %w", err)
	}
	return int64(count), nil
}

// ──────────────────────────────────────────────────
// Membership operations
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(ctx context.Context, m *membership.Membership) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	model := membershipToModel(m)
	if _, err := s.pgdb.NewInsert(model).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membership %s/%s: %w", m.PrincipalID, m.GroupID, store.ErrDuplicate)
		}
		return fmt.Errorf("ability: create membership: %w", err)
	}
	return nil
}

func (s *Store) GetMembership(ctx context.Context, membershipID id.MembershipID) (*membership.Membership, error) {
	m := new(membershipModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", membershipID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get membership: %w", err)
	}
	return membershipFromModel(m), nil
}

func (s *Store) GetMembershipByPrincipalAndGroup(ctx context.Context, principalID id.PrincipalID, groupID string) (*membership.Membership, error) {
	m := new(membershipModel)
	err := s.pgdb.NewSelect(m).
		Where("principal_id = ?", principalID.String()).
		Where("group_id = ?", groupID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership %s/%s: %w", principalID, groupID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get membership by principal and group: %w", err)
	}
	return membershipFromModel(m), nil
}

func (s *Store) SetMembershipRole(ctx context.Context, membershipID id.MembershipID, role membership.Role) error {
	m, err := s.GetMembership(ctx, membershipID)
	if err != nil {
		return err
	}
	m.Role = role
	m.UpdatedAt = time.Now().UTC()
	model := membershipToModel(m)
	if _, err := s.pgdb.NewUpdate(model).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ability: set membership role: %w", err)
	}
	return nil
}

func (s *Store) DeleteMembership(ctx context.Context, membershipID id.MembershipID) error {
	if _, err := s.GetMembership(ctx, membershipID); err != nil {
		return err
	}
	if err := s.DeleteGrantsByMembership(ctx, membershipID); err != nil {
		return err
	}
	if _, err := s.pgdb.NewDelete((*membershipModel)(nil)).
		Where("id = ?", membershipID.String()).Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete membership: %w", err)
	}
	return nil
}

func (s *Store) ListMembershipsForPrincipal(ctx context.Context, principalID id.PrincipalID) ([]*membership.Membership, error) {
	var models []membershipModel
	err := s.pgdb.NewSelect(&models).
		Where("principal_id = ?", principalID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ability: list memberships for principal: %w", err)
	}
	result := make([]*membership.Membership, len(models))
	for i := range models {
		result[i] = membershipFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListMemberships(ctx context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	var models []membershipModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.PrincipalID != nil {
			q = q.Where("principal_id = ?", filter.PrincipalID.String())
		}
		if filter.GroupID != "" {
			q = q.Where("group_id = ?", filter.GroupID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", string(filter.Role))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ability: list memberships: %w", err)
	}
	result := make([]*membership.Membership, len(models))
	for i := range models {
		result[i] = membershipFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountMemberships(ctx context.Context, filter *membership.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*membershipModel)(nil))
	if filter != nil {
		if filter.PrincipalID != nil {
			q = q.Where("principal_id = ?", filter.PrincipalID.String())
		}
		if filter.GroupID != "" {
			q = q.Where("group_id = ?", filter.GroupID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", string(filter.Role))
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count memberships: %w", err)
	}
	return int64(count), nil
}

func (s *Store) DeleteMembershipsByGroup(ctx context.Context, groupID string) error {
	memberships, err := s.ListMemberships(ctx, &membership.ListFilter{GroupID: groupID})
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if err := s.DeleteGrantsByMembership(ctx, m.ID); err != nil {
			return err
		}
	}
	if _, err := s.pgdb.NewDelete((*membershipModel)(nil)).
		Where("group_id = ?", groupID).Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete memberships by group: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Grant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(ctx context.Context, g *grant.Grant) error {
	if _, err := s.GetMembership(ctx, g.MembershipID); err != nil {
		return err
	}
	count, err := s.pgdb.NewSelect((*grantModel)(nil)).
		Where("membership_id = ?", g.MembershipID.String()).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("ability: create grant: %w", err)
	}
	now := time.Now().UTC()
	g.Position = int(count)
	g.CreatedAt = now
	g.UpdatedAt = now
	m := grantToModel(g)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ability: create grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*grant.Grant, error) {
	m := new(grantModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", grantID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("grant %s: %w", grantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get grant: %w", err)
	}
	return grantFromModel(m), nil
}

func (s *Store) UpdateGrant(ctx context.Context, g *grant.Grant) error {
	existing, err := s.GetGrant(ctx, g.ID)
	if err != nil {
		return err
	}
	g.Position = existing.Position // declaration order is fixed at creation
	g.UpdatedAt = time.Now().UTC()
	m := grantToModel(g)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ability: update grant: %w", err)
	}
	return nil
}

func (s *Store) DeleteGrant(ctx context.Context, grantID id.GrantID) error {
	if _, err := s.GetGrant(ctx, grantID); err != nil {
		return err
	}
	if _, err := s.pgdb.NewDelete((*grantModel)(nil)).
		Where("id = ?", grantID.String()).Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete grant: %w", err)
	}
	return nil
}

func (s *Store) ListGrantsForMembership(ctx context.Context, membershipID id.MembershipID) ([]*grant.Grant, error) {
	var models []grantModel
	err := s.pgdb.NewSelect(&models).
		Where("membership_id = ?", membershipID.String()).
		OrderExpr("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ability: list grants for membership: %w", err)
	}
	result := make([]*grant.Grant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	var models []grantModel
	q := s.pgdb.NewSelect(&models).OrderExpr("membership_id ASC, position ASC")
	if filter != nil {
		if filter.MembershipID != nil {
			q = q.Where("membership_id = ?", filter.MembershipID.String())
		}
		if filter.Subject != "" {
			q = q.Where("subject = ?", filter.Subject)
		}
		if filter.Effect != "" {
			q = q.Where("effect = ?", string(filter.Effect))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ability: list grants: %w", err)
	}
	result := make([]*grant.Grant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountGrants(ctx context.Context, filter *grant.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*grantModel)(nil))
	if filter != nil {
		if filter.MembershipID != nil {
			q = q.Where("membership_id = ?", filter.MembershipID.String())
		}
		if filter.Subject != "" {
			q = q.Where("subject = ?", filter.Subject)
		}
		if filter.Effect != "" {
			q = q.Where("effect = ?", string(filter.Effect))
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count grants: %w", err)
	}
	return int64(count), nil
}

func (s *Store) DeleteGrantsByMembership(ctx context.Context, membershipID id.MembershipID) error {
	if _, err := s.pgdb.NewDelete((*grantModel)(nil)).
		Where("membership_id = ?", membershipID.String()).Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete grants by membership: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Applicant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateApplicant(ctx context.Context, a *applicant.Applicant) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	m := applicantToModel(a)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("applicant telephone %q: %w", a.Telephone, store.ErrDuplicate)
		}
		return fmt.Errorf("ability: create applicant: %w", err)
	}
	return nil
}

func (s *Store) GetApplicant(ctx context.Context, applicantID id.ApplicantID) (*applicant.Applicant, error) {
	m := new(applicantModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", applicantID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("applicant %s: %w", applicantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get applicant: %w", err)
	}
	return applicantFromModel(m), nil
}

func (s *Store) GetApplicantByTelephone(ctx context.Context, telephone string) (*applicant.Applicant, error) {
	m := new(applicantModel)
	err := s.pgdb.NewSelect(m).Where("telephone = ?", telephone).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("applicant telephone %q: %w", telephone, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get applicant by telephone: %w", err)
	}
	return applicantFromModel(m), nil
}

func (s *Store) UpdateApplicant(ctx context.Context, a *applicant.Applicant) error {
	a.UpdatedAt = time.Now().UTC()
	m := applicantToModel(a)
	res, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("ability: update applicant: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("applicant %s: %w", a.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeactivateApplicant(ctx context.Context, applicantID id.ApplicantID) error {
	a, err := s.GetApplicant(ctx, applicantID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	a.IsActive = false
	a.DeactivatedAt = &now
	a.UpdatedAt = now
	m := applicantToModel(a)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ability: deactivate applicant: %w", err)
	}
	return nil
}

func (s *Store) ListApplicants(ctx context.Context, filter *applicant.ListFilter) ([]*applicant.Applicant, error) {
	var models []applicantModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			q = q.Where("(telephone LIKE ? OR LOWER(email) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?))",
				"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ability: list applicants: %w", err)
	}
	result := make([]*applicant.Applicant, len(models))
	for i := range models {
		result[i] = applicantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountApplicants(ctx context.Context, filter *applicant.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*applicantModel)(nil))
	if filter != nil {
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			q = q.Where("(telephone LIKE ? OR LOWER(email) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?))",
				"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count applicants: %w", err)
	}
	return int64(count), nil
}

// ──────────────────────────────────────────────────
// Check log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(ctx context.Context, e *checklog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m := checkLogToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ability: create check log: %w", err)
	}
	return nil
}

func (s *Store) GetCheckLog(ctx context.Context, logID id.DecisionLogID) (*checklog.Entry, error) {
	m := new(checkLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("check log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get check log: %w", err)
	}
	return checkLogFromModel(m), nil
}

func (s *Store) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	var models []checkLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.Track != "" {
			q = q.Where("track = ?", filter.Track)
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Subject != "" {
			q = q.Where("subject = ?", filter.Subject)
		}
		if filter.GroupID != "" {
			q = q.Where("group_id = ?", filter.GroupID)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ability: list check logs: %w", err)
	}
	result := make([]*checklog.Entry, len(models))
	for i := range models {
		result[i] = checkLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*checkLogModel)(nil))
	if filter != nil {
		if filter.Track != "" {
			q = q.Where("track = ?", filter.Track)
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Subject != "" {
			q = q.Where("subject = ?", filter.Subject)
		}
		if filter.GroupID != "" {
			q = q.Where("group_id = ?", filter.GroupID)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count check logs: %w", err)
	}
	return int64(count), nil
}

func (s *Store) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*checkLogModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: purge check logs: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // drivers always report
	return rows, nil
}

func (s *Store) DeleteCheckLogsByPrincipal(ctx context.Context, track, principalID string) error {
	if _, err := s.pgdb.NewDelete((*checkLogModel)(nil)).
		Where("track = ?", track).
		Where("principal_id = ?", principalID).Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete check logs by principal: %w", err)
	}
	return nil
}
