package sqlite

import (
	"encoding/json"
	"fmt"
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
	ID              string     `grove:"id,pk"`
	Email           string     `grove:"email,notnull"`
	FirstName       string     `grove:"first_name,notnull"`
	LastName        string     `grove:"last_name"`
	Telephone       string     `grove:"telephone"`
	Roles           string     `grove:"roles"` // JSON text
	IsActive        bool       `grove:"is_active,notnull"`
	DeactivatedAt   *time.Time `grove:"deactivated_at"`
	Metadata        string     `grove:"metadata"` // JSON text
	CreatedAt       time.Time  `grove:"created_at,notnull"`
	UpdatedAt       time.Time  `grove:"updated_at,notnull"`
}

func principalToModel(p *principal.Principal) (*principalModel, error) {
	roles, err := json.Marshal(p.Roles)
	if err != nil {
		return nil, fmt.Errorf("marshal principal roles: %w", err)
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal principal metadata: %w", err)
	}
	return &principalModel{
		ID:            p.ID.String(),
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Telephone:     p.Telephone,
		Roles:         string(roles),
		IsActive:      p.IsActive,
		DeactivatedAt: p.DeactivatedAt,
		Metadata:      string(metadata),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func principalFromModel(m *principalModel) (*principal.Principal, error) {
	pid, _ := id.ParsePrincipalID(m.ID) //nolint:errcheck // stored IDs are always valid
	var roles []string
	if m.Roles != "" {
		if err := json.Unmarshal([]byte(m.Roles), &roles); err != nil {
			return nil, fmt.Errorf("unmarshal principal roles: %w", err)
		}
	}
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal principal metadata: %w", err)
		}
	}
	return &principal.Principal{
		ID:            pid,
		Email:         m.Email,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Telephone:     m.Telephone,
		Roles:         roles,
		IsActive:      m.IsActive,
		DeactivatedAt: m.DeactivatedAt,
		Metadata:      metadata,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Membership model
// ──────────────────────────────────────────────────

type membershipModel struct {
	grove.BaseModel `grove:"table:ability_memberships"`
	ID              string    `grove:"id,pk"`
	PrincipalID     string    `grove:"principal_id,notnull"`
	GroupID         string    `grove:"group_id,notnull"`
	Role            string    `grove:"role,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func membershipToModel(m *membership.Membership) (*membershipModel, error) {
	metadata, err := json.Marshal(m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal membership metadata: %w", err)
	}
	return &membershipModel{
		ID:          m.ID.String(),
		PrincipalID: m.PrincipalID.String(),
		GroupID:     m.GroupID,
		Role:        string(m.Role),
		Metadata:    string(metadata),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func membershipFromModel(m *membershipModel) (*membership.Membership, error) {
	mid, _ := id.ParseMembershipID(m.ID)         //nolint:errcheck // stored IDs are always valid
	pid, _ := id.ParsePrincipalID(m.PrincipalID) //nolint:errcheck
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal membership metadata: %w", err)
		}
	}
	return &membership.Membership{
		ID:          mid,
		PrincipalID: pid,
		GroupID:     m.GroupID,
		Role:        membership.Role(m.Role),
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Grant model
// ──────────────────────────────────────────────────

type grantModel struct {
	grove.BaseModel `grove:"table:ability_grants"`
	ID              string    `grove:"id,pk"`
	MembershipID    string    `grove:"membership_id,notnull"`
	Action          string    `grove:"action,notnull"`
	Subject         string    `grove:"subject,notnull"`
	Effect          string    `grove:"effect,notnull"`
	Condition       string    `grove:"condition"` // JSON text
	Position        int       `grove:"position,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func grantToModel(g *grant.Grant) (*grantModel, error) {
	condition, err := json.Marshal(g.Condition.Preds)
	if err != nil {
		return nil, fmt.Errorf("marshal grant condition: %w", err)
	}
	return &grantModel{
		ID:           g.ID.String(),
		MembershipID: g.MembershipID.String(),
		Action:       g.Action,
		Subject:      g.Subject,
		Effect:       string(g.Effect),
		Condition:    string(condition),
		Position:     g.Position,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}, nil
}

func grantFromModel(m *grantModel) (*grant.Grant, error) {
	gid, _ := id.ParseGrantID(m.ID)                //nolint:errcheck // stored IDs are always valid
	mid, _ := id.ParseMembershipID(m.MembershipID) //nolint:errcheck
	var preds []grant.Predicate
	if m.Condition != "" {
		if err := json.Unmarshal([]byte(m.Condition), &preds); err != nil {
			return nil, fmt.Errorf("unmarshal grant condition: %w", err)
		}
	}
	return &grant.Grant{
		ID:           gid,
		MembershipID: mid,
		Action:       m.Action,
		Subject:      m.Subject,
		Effect:       grant.Effect(m.Effect),
		Condition:    grant.Condition{Preds: preds},
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
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
	ID              string    `grove:"id,pk"`
	Track           string    `grove:"track,notnull"`
	PrincipalID     string    `grove:"principal_id,notnull"`
	Action          string    `grove:"action"`
	Subject         string    `grove:"subject"`
	GroupID         string    `grove:"group_id"`
	Decision        string    `grove:"decision,notnull"`
	Reason          string    `grove:"reason"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	RequestIP       string    `grove:"request_ip"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func checkLogToModel(e *checklog.Entry) (*checkLogModel, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal check log metadata: %w", err)
	}
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
		Metadata:    string(metadata),
		CreatedAt:   e.CreatedAt,
	}, nil
}

func checkLogFromModel(m *checkLogModel) (*checklog.Entry, error) {
	clid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal check log metadata: %w", err)
		}
	}
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
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
	}, nil
}
