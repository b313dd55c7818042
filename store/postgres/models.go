package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
)

// ──────────────────────────────────────────────────
// Principal model
// ──────────────────────────────────────────────────

type principalModel struct {
	grove.BaseModel `grove:"table:ability_principals"`
	ID              string         `grove:"id,pk"`
	Email           string         `grove:"email,notnull"`
	FirstName       string         `grove:"first_name,notnull"`
	LastName        string         `grove:"last_name"`
	Telephone       string         `grove:"telephone"`
	Roles           []string       `grove:"roles,type:jsonb"`
	IsActive        bool           `grove:"is_active,notnull"`
	DeactivatedAt   *time.Time     `grove:"deactivated_at"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func principalToModel(p *principal.Principal) *principalModel {
	return &principalModel{
		ID:            p.ID.String(),
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Telephone:     p.Telephone,
		Roles:         p.Roles,
		IsActive:      p.IsActive,
		DeactivatedAt: p.DeactivatedAt,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func principalFromModel(m *principalModel) *principal.Principal {
	pid, _ := id.ParsePrincipalID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &principal.Principal{
		ID:            pid,
		Email:         m.Email,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Telephone:     m.Telephone,
		Roles:         m.Roles,
		IsActive:      m.IsActive,
		DeactivatedAt: m.DeactivatedAt,
		Metadata:      m.Metadata,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Membership model
// ──────────────────────────────────────────────────

type membershipModel struct {
	grove.BaseModel `grove:"table:ability_memberships"`
	ID              string         `grove:"id,pk"`
	PrincipalID     string         `grove:"principal_id,notnull"`
	GroupID         string         `grove:"group_id,notnull"`
	Role            string         `grove:"role,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func membershipToModel(m *membership.Membership) *membershipModel {
	return &membershipModel{
		ID:          m.ID.String(),
		PrincipalID: m.PrincipalID.String(),
		GroupID:     m.GroupID,
		Role:        string(m.Role),
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func membershipFromModel(m *membershipModel) *membership.Membership {
	mid, _ := id.ParseMembershipID(m.ID)         //nolint:errcheck // stored IDs are always valid
	pid, _ := id.ParsePrincipalID(m.PrincipalID) //nolint:errcheck
	return &membership.Membership{
		ID:          mid,
		PrincipalID: pid,
		GroupID:     m.GroupID,
		Role:        membership.Role(m.Role),
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Grant model
// ──────────────────────────────────────────────────

type grantModel struct {
	grove.BaseModel `grove:"table:ability_grants"`
	ID              string            `grove:"id,pk"`
	MembershipID    string            `grove:"membership_id,notnull"`
	Action          string            `grove:"action,notnull"`
	Subject         string            `grove:"subject,notnull"`
	Effect          string            `grove:"effect,notnull"`
	Condition       []grant.Predicate `grove:"condition,type:jsonb"`
	Position        int               `grove:"position,notnull"`
	CreatedAt       time.Time         `grove:"created_at,notnull"`
	UpdatedAt       time.Time         `grove:"updated_at,notnull"`
}

func grantToModel(g *grant.Grant) *grantModel {
	return &grantModel{
		ID:           g.ID.String(),
		MembershipID: g.MembershipID.String(),
		Action:       g.Action,
		Subject:      g.Subject,
		Effect:       string(g.Effect),
		Condition:    g.Condition.Preds,
		Position:     g.Position,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func grantFromModel(m *grantModel) *grant.Grant {
	gid, _ := id.ParseGrantID(m.ID)                //nolint:errcheck // stored IDs are always valid
	mid, _ := id.ParseMembershipID(m.MembershipID) //nolint:errcheck
	return &grant.Grant{
		ID:           gid,
		MembershipID: mid,
		Action:       m.Action,
		Subject:      m.Subject,
		Effect:       grant.Effect(m.Effect),
		Condition:    grant.Condition{Preds: m.Condition},
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Applicant model
// ──────────────────────────────────────────────────

type applicantModel struct {
	grove.BaseModel `grove:"table:ability_applicants"`
	ID              string     `grove:"id,pk"`
	Telephone       string     `grove:"telephone,notnull"`
	Email           string     `grove:"email"`
	FirstName       string     `grove:"first_name"`
	LastName        string     `grove:"last_name"`
	IsActive        bool       `grove:"is_active,notnull"`
	DeactivatedAt   *time.Time `grove:"deactivated_at"`
	CreatedAt       time.Time  `grove:"created_at,notnull"`
	UpdatedAt       time.Time  `grove:"updated_at,notnull"`
}

func applicantToModel(a *applicant.Applicant) *applicantModel {
	return &applicantModel{
		ID:            a.ID.String(),
		Telephone:     a.Telephone,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		IsActive:      a.IsActive,
		DeactivatedAt: a.DeactivatedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func applicantFromModel(m *applicantModel) *applicant.Applicant {
	aid, _ := id.ParseApplicantID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &applicant.Applicant{
		ID:            aid,
		Telephone:     m.Telephone,
		Email:         m.Email,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		IsActive:      m.IsActive,
		DeactivatedAt: m.DeactivatedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Check log model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:ability_check_logs"`
	ID              string         `grove:"id,pk"`
	Track           string         `grove:"track,notnull"`
	PrincipalID     string         `grove:"principal_id,notnull"`
	Action          string         `grove:"action"`
	Subject         string         `grove:"subject"`
	GroupID         string         `grove:"group_id"`
	Decision        string         `grove:"decision,notnull"`
	Reason          string         `grove:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns,notnull"`
	RequestIP       string         `grove:"request_ip"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func checkLogToModel(e *checklog.Entry) *checkLogModel {
	return &checkLogModel{
		ID:          e.ID.String(),
		Track:       e.Track,
		PrincipalID: e.PrincipalID,
		Action:      e.Action,
		Subject:     e.Subject,
		GroupID:     e.GroupID,
		Decision:    e.Decision,
		Reason:      e.Reason,
		EvalTimeNs:  e.EvalTimeNs,
		RequestIP:   e.RequestIP,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

func checkLogFromModel(m *checkLogModel) *checklog.Entry {
	clid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &checklog.Entry{
		ID:          clid,
		Track:       m.Track,
		PrincipalID: m.PrincipalID,
		Action:      m.Action,
		Subject:     m.Subject,
		GroupID:     m.GroupID,
		Decision:    m.Decision,
		Reason:      m.Reason,
		EvalTimeNs:  m.EvalTimeNs,
		RequestIP:   m.RequestIP,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
	}
}
