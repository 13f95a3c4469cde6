// Package iodb implements the db.Handle and db.Provider contracts for
// PostgreSQL server environments and the local SQLite store. This is an
// impure I/O package implementing contracts defined in pkg/.
package iodb

import (
	"context"
	"fmt"

	"github.com/getyour/gyadmin/pkg/config"
	"github.com/getyour/gyadmin/pkg/db"
	"github.com/jackc/pgx/v5"
)

// pgHandle wraps one pgx.Conn. A transaction begins lazily on the first
// statement and stays open until Commit or Rollback, so statements
// between commits form one unit. A single connection, not a pool: the
// clone engine's visibility guarantees (a committed address row must be
// seen by the next statement) require every statement on one session.
type pgHandle struct {
	conn    *pgx.Conn
	tx      pgx.Tx
	profile db.Profile
}

// openPostgres connects to the profile's server and verifies the
// connection before returning.
func openPostgres(
	ctx context.Context, profile db.Profile, cfg config.ProfileConfig,
) (db.Handle, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		sslMode,
	)

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, ConnectionError(profile.Name, cfg.Host, err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, ConnectionError(profile.Name, cfg.Host, err)
	}

	return &pgHandle{conn: conn, profile: profile}, nil
}

// begin returns the open transaction, starting one if needed.
func (h *pgHandle) begin(ctx context.Context) (pgx.Tx, error) {
	if h.tx != nil {
		return h.tx, nil
	}
	tx, err := h.conn.Begin(ctx)
	if err != nil {
		return nil, TxError(h.profile.Name, "begin", err)
	}
	h.tx = tx
	return tx, nil
}

func (h *pgHandle) Query(
	ctx context.Context, sql string, args ...any,
) ([][]any, error) {
	tx, err := h.begin(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, QueryError(h.profile.Name, sql, err)
	}
	defer rows.Close()

	var res [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, QueryError(h.profile.Name, sql, err)
		}
		res = append(res, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError(h.profile.Name, sql, err)
	}
	return res, nil
}

func (h *pgHandle) Exec(
	ctx context.Context, sql string, args ...any,
) error {
	tx, err := h.begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return ExecError(h.profile.Name, sql, err)
	}
	return nil
}

func (h *pgHandle) InsertReturningID(
	ctx context.Context, table string, cols []string, vals []any,
) (int64, error) {
	tx, err := h.begin(ctx)
	if err != nil {
		return 0, err
	}

	sql := insertSQL(table, cols, h.Placeholder) + " RETURNING id"
	var id int64
	if err := tx.QueryRow(ctx, sql, vals...).Scan(&id); err != nil {
		return 0, ExecError(h.profile.Name, sql, err)
	}
	return id, nil
}

func (h *pgHandle) Commit(ctx context.Context) error {
	if h.tx == nil {
		return nil
	}
	tx := h.tx
	h.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return TxError(h.profile.Name, "commit", err)
	}
	return nil
}

func (h *pgHandle) Rollback(ctx context.Context) error {
	if h.tx == nil {
		return nil
	}
	tx := h.tx
	h.tx = nil
	if err := tx.Rollback(ctx); err != nil {
		return TxError(h.profile.Name, "rollback", err)
	}
	return nil
}

func (h *pgHandle) Close(ctx context.Context) error {
	_ = h.Rollback(ctx)
	return h.conn.Close(ctx)
}

func (h *pgHandle) Kind() db.Kind         { return db.KindPostgres }
func (h *pgHandle) Env() db.EnvClass      { return h.profile.Env }
func (h *pgHandle) ProfileName() string   { return h.profile.Name }
func (h *pgHandle) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}
