// Package db defines the store-handle contracts used by the clone engine
// and the extract subsystem. Implementations live in internal/iodb.
//
// Design rationale:
//   - One Handle interface with two variants (PostgreSQL server, SQLite
//     single-file store) instead of kind-branching throughout the engine.
//   - Cursor-style Query/Exec with an implicit transaction that begins on
//     the first statement and ends at Commit/Rollback; the engine's
//     ordering guarantees rely on this transactional model.
//   - Placeholder() hides the $1-vs-? dialect difference from dynamic SQL.
package db

import (
	"context"
)

// Kind identifies the backing store variant of a Handle.
type Kind int

const (
	// KindPostgres is a networked PostgreSQL server.
	KindPostgres Kind = iota
	// KindSQLite is a local single-file store.
	KindSQLite
)

func (k Kind) String() string {
	switch k {
	case KindPostgres:
		return "postgres"
	case KindSQLite:
		return "sqlite"
	}
	return "unknown"
}

// Handle is an open connection to one environment's store. A Handle is not
// safe for concurrent use; the clone engine is single-threaded by design.
type Handle interface {
	// Query runs a parameterized SELECT and returns all rows, each as a
	// positional value slice. An implicit transaction begins on the first
	// statement after open/Commit/Rollback.
	Query(ctx context.Context, sql string, args ...any) ([][]any, error)

	// Exec runs a parameterized statement that returns no rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// InsertReturningID inserts one row and returns the store-assigned
	// integer primary key (RETURNING id on PostgreSQL,
	// last_insert_rowid() on SQLite).
	InsertReturningID(
		ctx context.Context, table string, cols []string, vals []any,
	) (int64, error)

	// Commit commits the current implicit transaction, if any.
	Commit(ctx context.Context) error

	// Rollback rolls back the current implicit transaction, if any.
	// Rollback with no open transaction is a no-op.
	Rollback(ctx context.Context) error

	// Close rolls back any open transaction and releases the connection.
	Close(ctx context.Context) error

	// Kind reports the backing store variant.
	Kind() Kind

	// Env reports the environment class of the profile this handle was
	// opened for.
	Env() EnvClass

	// ProfileName reports the profile this handle was opened for.
	ProfileName() string

	// Placeholder returns the dialect's parameter placeholder for the
	// 1-based position i ("$1"... for PostgreSQL, "?" for SQLite).
	Placeholder(i int) string
}

// Provider resolves profile names to live Handles. Open is idempotent: a
// repeated Open for a profile whose handle is still active returns that
// handle without reconnecting. This supports batch invocation where the
// caller threads pre-opened handles through many operations.
type Provider interface {
	Open(ctx context.Context, profile string) (Handle, error)

	// OpenAt behaves like Open, but a "_local" profile uses the SQLite
	// file at localPath instead of the configured location. Server
	// profiles and an empty localPath fall back to Open semantics. The
	// override does not apply to a handle already cached for the profile.
	OpenAt(ctx context.Context, profile, localPath string) (Handle, error)

	// Close closes and forgets the handle opened for one profile. A
	// profile with no open handle is a no-op.
	Close(ctx context.Context, profile string) error

	// CloseAll closes every handle this provider opened. Handles supplied
	// by the caller are never closed here.
	CloseAll(ctx context.Context) error
}
