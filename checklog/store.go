package checklog

import (
	"context"
	"time"

	"github.com/casetrail/ability/id"
)

// Store defines persistence operations for decision audit logs.
type Store interface {
	// CreateCheckLog persists a new decision log entry.
	CreateCheckLog(ctx context.Context, e *Entry) error

	// GetCheckLog retrieves a decision log entry by ID.
	GetCheckLog(ctx context.Context, logID id.DecisionLogID) (*Entry, error)

	// ListCheckLogs returns decision log entries matching the filter.
	ListCheckLogs(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountCheckLogs returns the number of entries matching the filter.
	CountCheckLogs(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeCheckLogs removes entries older than the given time.
	PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error)

	// DeleteCheckLogsByPrincipal removes all entries for one identity.
	DeleteCheckLogsByPrincipal(ctx context.Context, track, principalID string) error
}
