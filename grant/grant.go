// Package grant defines the stored custom permission entity and the
// condition predicates rules match against.
package grant

import (
	"time"

	"github.com/casetrail/ability/id"
)

// Effect is the grant outcome, allow or deny.
type Effect string

const (
	// EffectAllow permits matching requests.
	EffectAllow Effect = "allow"

	// EffectDeny blocks matching requests.
	EffectDeny Effect = "deny"
)

// Grant is an explicit per-membership permission stored in the data store.
// It extends or overrides the membership role's defaults and is exclusively
// owned by its membership: deleting the membership deletes its grants.
//
// Action and Subject are kept as raw stored tags; the rule compiler
// validates them against the closed enums and rejects unknown tags before
// they reach the matcher.
type Grant struct {
	ID           id.GrantID      `json:"id" db:"id"`
	MembershipID id.MembershipID `json:"membership_id" db:"membership_id"`
	Action       string          `json:"action" db:"action"`
	Subject      string          `json:"subject" db:"subject"`
	Effect       Effect          `json:"effect" db:"effect"`
	Condition    Condition       `json:"condition,omitempty" db:"-"`
	Position     int             `json:"position" db:"position"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing grants.
type ListFilter struct {
	MembershipID *id.MembershipID `json:"membership_id,omitempty"`
	Subject      string           `json:"subject,omitempty"`
	Effect       Effect           `json:"effect,omitempty"`
	Limit        int              `json:"limit,omitempty"`
	Offset       int              `json:"offset,omitempty"`
}
