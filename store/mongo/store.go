// Package mongo provides a MongoDB implementation of the composite store
// backed by grove ORM. Migration creates collection indexes.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
	"github.com/casetrail/ability/store"
)

// Collection name constants.
const (
	colPrincipals  = "ability_principals"
	colMemberships = "ability_memberships"
	colGrants      = "ability_grants"
	colApplicants  = "ability_applicants"
	colCheckLogs   = "ability_check_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite ability store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all ability collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("ability/mongo: migrate %s indexes: %w", col, err)
		}
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

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all ability collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colPrincipals: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "is_active", Value: 1}}},
			{Keys: bson.D{{Key: "roles", Value: 1}}},
		},
		colMemberships: {
			{
				Keys:    bson.D{{Key: "principal_id", Value: 1}, {Key: "group_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "group_id", Value: 1}}},
		},
		colGrants: {
			{Keys: bson.D{{Key: "membership_id", Value: 1}, {Key: "position", Value: 1}}},
		},
		colApplicants: {
			{
				Keys:    bson.D{{Key: "telephone", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colCheckLogs: {
			{Keys: bson.D{{Key: "track", Value: 1}, {Key: "principal_id", Value: 1}}},
			{Keys: bson.D{{Key: "decision", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Principal operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePrincipal(ctx context.Context, p *principal.Principal) error {
	t := now()
	p.CreatedAt = t
	p.UpdatedAt = t
	m := principalToModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("principal email %q: %w", p.Email, store.ErrDuplicate)
		}
		return fmt.Errorf("ability: create principal: %w", err)
	}
	return nil
}

func (s *Store) GetPrincipal(ctx context.Context, principalID id.PrincipalID) (*principal.Principal, error) {
	var m principalModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": principalID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("principal %s: %w", principalID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get principal: %w", err)
	}
	return principalFromModel(&m), nil
}

func (s *Store) GetPrincipalByEmail(ctx context.Context, email string) (*principal.Principal, error) {
	var m principalModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"email": bson.M{"$regex": "^" + email + "$", "$options": "i"}}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("principal email %q: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get principal by email: %w", err)
	}
	return principalFromModel(&m), nil
}

func (s *Store) UpdatePrincipal(ctx context.Context, p *principal.Principal) error {
	existing, err := s.GetPrincipal(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Roles = existing.Roles // roles change via SetPrincipalRoles
	p.UpdatedAt = now()
	m := principalToModel(p)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ability: update principal: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("principal %s: %w", p.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) SetPrincipalRoles(ctx context.Context, principalID id.PrincipalID, roles []string) error {
	p, err := s.GetPrincipal(ctx, principalID)
	if err != nil {
		return err
	}
	p.Roles = roles
	p.UpdatedAt = now()
	m := principalToModel(p)
	if _, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("ability: set principal roles: %w", err)
	}
	return nil
}

func (s *Store) DeactivatePrincipal(ctx context.Context, principalID id.PrincipalID) error {
	p, err := s.GetPrincipal(ctx, principalID)
	if err != nil {
		return err
	}
	t := now()
	p.IsActive = false
	p.DeactivatedAt = &t
	p.UpdatedAt = t
	m := principalToModel(p)
	if _, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("ability: deactivate principal: %w", err)
	}
	return nil
}

func principalFilter(filter *principal.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.Role != "" {
		f["roles"] = filter.Role
	}
	if filter.IsActive != nil {
		f["is_active"] = *filter.IsActive
	}
	if filter.Search != "" {
		f["$or"] = bson.A{
			bson.M{"email": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"first_name": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"last_name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	return f
}

func (s *Store) ListPrincipals(ctx context.Context, filter *principal.ListFilter) ([]*principal.Principal, error) {
	var models []principalModel
	q := s.mdb.NewFind(&models).
		Filter(principalFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*principalModel)(nil)).
		Filter(principalFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count principals: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Membership operations
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(ctx context.Context, m *membership.Membership) error {
	t := now()
	m.CreatedAt = t
	m.UpdatedAt = t
	model := membershipToModel(m)
	if _, err := s.mdb.NewInsert(model).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("membership %s/%s: %w", m.PrincipalID, m.GroupID, store.ErrDuplicate)
		}
		return fmt.Errorf("ability: create membership: %w", err)
	}
	return nil
}

func (s *Store) GetMembership(ctx context.Context, membershipID id.MembershipID) (*membership.Membership, error) {
	var m membershipModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": membershipID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("membership %s: %w", membershipID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get membership: %w", err)
	}
	return membershipFromModel(&m), nil
}

func (s *Store) GetMembershipByPrincipalAndGroup(ctx context.Context, principalID id.PrincipalID, groupID string) (*membership.Membership, error) {
	var m membershipModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"principal_id": principalID.String(), "group_id": groupID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("membership %s/%s: %w", principalID, groupID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get membership by principal and group: %w", err)
	}
	return membershipFromModel(&m), nil
}

func (s *Store) SetMembershipRole(ctx context.Context, membershipID id.MembershipID, role membership.Role) error {
	m, err := s.GetMembership(ctx, membershipID)
	if err != nil {
		return err
	}
	m.Role = role
	m.UpdatedAt = now()
	model := membershipToModel(m)
	if _, err := s.mdb.NewUpdate(model).
		Filter(bson.M{"_id": model.ID}).
		Exec(ctx); err != nil {
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
	if _, err := s.mdb.NewDelete((*membershipModel)(nil)).
		Filter(bson.M{"_id": membershipID.String()}).
		Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete membership: %w", err)
	}
	return nil
}

func (s *Store) ListMembershipsForPrincipal(ctx context.Context, principalID id.PrincipalID) ([]*membership.Membership, error) {
	var models []membershipModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"principal_id": principalID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
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

func membershipFilter(filter *membership.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.PrincipalID != nil {
		f["principal_id"] = filter.PrincipalID.String()
	}
	if filter.GroupID != "" {
		f["group_id"] = filter.GroupID
	}
	if filter.Role != "" {
		f["role"] = string(filter.Role)
	}
	return f
}

func (s *Store) ListMemberships(ctx context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	var models []membershipModel
	q := s.mdb.NewFind(&models).
		Filter(membershipFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*membershipModel)(nil)).
		Filter(membershipFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count memberships: %w", err)
	}
	return count, nil
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
	if _, err := s.mdb.NewDelete((*membershipModel)(nil)).
		Many().
		Filter(bson.M{"group_id": groupID}).
		Exec(ctx); err != nil {
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
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(bson.M{"membership_id": g.MembershipID.String()}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("ability: create grant: %w", err)
	}
	t := now()
	g.Position = int(count)
	g.CreatedAt = t
	g.UpdatedAt = t
	m := grantToModel(g)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ability: create grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*grant.Grant, error) {
	var m grantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": grantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("grant %s: %w", grantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get grant: %w", err)
	}
	return grantFromModel(&m), nil
}

func (s *Store) UpdateGrant(ctx context.Context, g *grant.Grant) error {
	existing, err := s.GetGrant(ctx, g.ID)
	if err != nil {
		return err
	}
	g.Position = existing.Position // declaration order is fixed at creation
	g.UpdatedAt = now()
	m := grantToModel(g)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ability: update grant: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("grant %s: %w", g.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteGrant(ctx context.Context, grantID id.GrantID) error {
	if _, err := s.GetGrant(ctx, grantID); err != nil {
		return err
	}
	if _, err := s.mdb.NewDelete((*grantModel)(nil)).
		Filter(bson.M{"_id": grantID.String()}).
		Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete grant: %w", err)
	}
	return nil
}

func (s *Store) ListGrantsForMembership(ctx context.Context, membershipID id.MembershipID) ([]*grant.Grant, error) {
	var models []grantModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"membership_id": membershipID.String()}).
		Sort(bson.D{{Key: "position", Value: 1}}).
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

func grantFilter(filter *grant.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.MembershipID != nil {
		f["membership_id"] = filter.MembershipID.String()
	}
	if filter.Subject != "" {
		f["subject"] = filter.Subject
	}
	if filter.Effect != "" {
		f["effect"] = string(filter.Effect)
	}
	return f
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	var models []grantModel
	q := s.mdb.NewFind(&models).
		Filter(grantFilter(filter)).
		Sort(bson.D{{Key: "membership_id", Value: 1}, {Key: "position", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(grantFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count grants: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteGrantsByMembership(ctx context.Context, membershipID id.MembershipID) error {
	if _, err := s.mdb.NewDelete((*grantModel)(nil)).
		Many().
		Filter(bson.M{"membership_id": membershipID.String()}).
		Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete grants by membership: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Applicant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateApplicant(ctx context.Context, a *applicant.Applicant) error {
	t := now()
	a.CreatedAt = t
	a.UpdatedAt = t
	m := applicantToModel(a)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("applicant telephone %q: %w", a.Telephone, store.ErrDuplicate)
		}
		return fmt.Errorf("ability: create applicant: %w", err)
	}
	return nil
}

func (s *Store) GetApplicant(ctx context.Context, applicantID id.ApplicantID) (*applicant.Applicant, error) {
	var m applicantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": applicantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("applicant %s: %w", applicantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get applicant: %w", err)
	}
	return applicantFromModel(&m), nil
}

func (s *Store) GetApplicantByTelephone(ctx context.Context, telephone string) (*applicant.Applicant, error) {
	var m applicantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"telephone": telephone}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("applicant telephone %q: %w", telephone, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get applicant by telephone: %w", err)
	}
	return applicantFromModel(&m), nil
}

func (s *Store) UpdateApplicant(ctx context.Context, a *applicant.Applicant) error {
	a.UpdatedAt = now()
	m := applicantToModel(a)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ability: update applicant: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("applicant %s: %w", a.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeactivateApplicant(ctx context.Context, applicantID id.ApplicantID) error {
	a, err := s.GetApplicant(ctx, applicantID)
	if err != nil {
		return err
	}
	t := now()
	a.IsActive = false
	a.DeactivatedAt = &t
	a.UpdatedAt = t
	m := applicantToModel(a)
	if _, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("ability: deactivate applicant: %w", err)
	}
	return nil
}

func applicantFilter(filter *applicant.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.IsActive != nil {
		f["is_active"] = *filter.IsActive
	}
	if filter.Search != "" {
		f["$or"] = bson.A{
			bson.M{"telephone": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"first_name": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"last_name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	return f
}

func (s *Store) ListApplicants(ctx context.Context, filter *applicant.ListFilter) ([]*applicant.Applicant, error) {
	var models []applicantModel
	q := s.mdb.NewFind(&models).
		Filter(applicantFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*applicantModel)(nil)).
		Filter(applicantFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count applicants: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Check log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(ctx context.Context, e *checklog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	m := checkLogToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ability: create check log: %w", err)
	}
	return nil
}

func (s *Store) GetCheckLog(ctx context.Context, logID id.DecisionLogID) (*checklog.Entry, error) {
	var m checkLogModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": logID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("check log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("ability: get check log: %w", err)
	}
	return checkLogFromModel(&m), nil
}

func checkLogFilter(filter *checklog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.Track != "" {
		f["track"] = filter.Track
	}
	if filter.PrincipalID != "" {
		f["principal_id"] = filter.PrincipalID
	}
	if filter.Action != "" {
		f["action"] = filter.Action
	}
	if filter.Subject != "" {
		f["subject"] = filter.Subject
	}
	if filter.GroupID != "" {
		f["group_id"] = filter.GroupID
	}
	if filter.Decision != "" {
		f["decision"] = filter.Decision
	}
	created := bson.M{}
	if filter.After != nil {
		created["$gt"] = *filter.After
	}
	if filter.Before != nil {
		created["$lt"] = *filter.Before
	}
	if len(created) > 0 {
		f["created_at"] = created
	}
	return f
}

func (s *Store) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	var models []checkLogModel
	q := s.mdb.NewFind(&models).
		Filter(checkLogFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*checkLogModel)(nil)).
		Filter(checkLogFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: count check logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*checkLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("ability: purge check logs: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) DeleteCheckLogsByPrincipal(ctx context.Context, track, principalID string) error {
	if _, err := s.mdb.NewDelete((*checkLogModel)(nil)).
		Many().
		Filter(bson.M{"track": track, "principal_id": principalID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("ability: delete check logs by principal: %w", err)
	}
	return nil
}
