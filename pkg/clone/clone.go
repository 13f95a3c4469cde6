// Package clone defines the contract of the cross-environment record
// cloning engine. The implementation lives in internal/ioclone.
package clone

import (
	"context"

	"github.com/getyour/gyadmin/pkg/db"
)

// Request describes one clone operation.
type Request struct {
	// SourceProfile and TargetProfile name the two environments,
	// "<app>_<env>" with env in {prod, dev, local}.
	SourceProfile string
	TargetProfile string

	// SourceEmail selects the user to clone (case-insensitive; exactly one
	// match is required).
	SourceEmail string

	// TargetEmail replaces the user's email in the target. Communications
	// from the app may be sent to it.
	TargetEmail string

	// Interactive enables terminal prompts (overwrite confirmation). When
	// false no prompt is shown and the non-destructive default applies.
	Interactive bool

	// Overwrite authorizes replacing an existing target record set in
	// non-interactive mode. It is still subject to the environment policy:
	// never into prod, never when source and target environments match.
	Overwrite bool

	// LocalPath overrides the configured SQLite file for "_local"
	// profiles.
	LocalPath string

	// SourceHandle and TargetHandle, when non-nil, are used instead of
	// opening new connections and are left open on return. This supports
	// batch invocation.
	SourceHandle db.Handle
	TargetHandle db.Handle
}

// Outcome reports the result of a successful clone.
type Outcome struct {
	// UserID is the user's identifier in the target store. It equals the
	// source identifier unless a new identity was assigned.
	UserID int64

	// Email is the email the target record was given.
	Email string

	// PasswordNote names the template account whose password hash the
	// cloned user received.
	PasswordNote string

	// NewIdentity is true when the target store assigned a fresh
	// identifier instead of reusing the source one.
	NewIdentity bool

	// Overwritten is true when an existing target record set was replaced.
	Overwritten bool
}

// Cloner copies one user and all dependent records between two
// independently connected stores.
type Cloner interface {
	Clone(ctx context.Context, req Request) (Outcome, error)
}
