// Package checklog defines the authorization decision audit Entry entity.
package checklog

import (
	"time"

	"github.com/casetrail/ability/id"
)

// Track values for Entry.Track.
const (
	TrackPrincipal = "principal"
	TrackApplicant = "applicant"
)

// Entry is a single authorization decision audit record.
type Entry struct {
	ID          id.DecisionLogID `json:"id" db:"id"`
	Track       string           `json:"track" db:"track"` // "principal" or "applicant"
	PrincipalID string           `json:"principal_id" db:"principal_id"`
	Action      string           `json:"action" db:"action"`
	Subject     string           `json:"subject" db:"subject"`
	GroupID     string           `json:"group_id,omitempty" db:"group_id"`
	Decision    string           `json:"decision" db:"decision"`
	Reason      string           `json:"reason,omitempty" db:"reason"`
	EvalTimeNs  int64            `json:"eval_time_ns" db:"eval_time_ns"`
	RequestIP   string           `json:"request_ip,omitempty" db:"request_ip"`
	Metadata    map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	Track       string     `json:"track,omitempty"`
	PrincipalID string     `json:"principal_id,omitempty"`
	Action      string     `json:"action,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	GroupID     string     `json:"group_id,omitempty"`
	Decision    string     `json:"decision,omitempty"`
	After       *time.Time `json:"after,omitempty"`
	Before      *time.Time `json:"before,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}
