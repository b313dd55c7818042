// Package store defines the aggregate persistence interface. Each subsystem
// (principal, membership, grant, applicant, checklog) defines its own store
// interface; the composite Store composes them all.
// Backends: Postgres, SQLite, MongoDB, and Memory.
package store

import (
	"context"
	"errors"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/checklog"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/membership"
	"github.com/casetrail/ability/principal"
)

// Sentinel errors shared by every backend. Backends wrap them with entity
// detail; callers match with errors.Is.
var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate is returned when a uniqueness constraint is violated,
	// e.g. a second membership for the same principal and group.
	ErrDuplicate = errors.New("store: duplicate")
)

// Store is the aggregate persistence interface.
// A single backend (postgres, sqlite, mongo, memory) implements all of the
// subsystem stores.
type Store interface {
	principal.Store
	membership.Store
	grant.Store
	applicant.Store
	checklog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
