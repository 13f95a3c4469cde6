package iodb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/getyour/gyadmin/pkg/db"
	_ "modernc.org/sqlite"
)

// sqliteHandle wraps a database/sql connection to the single-file local
// store. The same lazy-transaction model as the PostgreSQL handle.
type sqliteHandle struct {
	sdb     *sql.DB
	tx      *sql.Tx
	profile db.Profile
	path    string
}

// OpenSQLite opens the single-file store at path, creating the file on
// first use. Exported because test fixtures open stores under arbitrary
// environment classes.
func OpenSQLite(
	ctx context.Context, profile db.Profile, path string,
) (db.Handle, error) {
	sdb, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, ConnectionError(profile.Name, path, err)
	}
	// One connection keeps the implicit-transaction model coherent.
	sdb.SetMaxOpenConns(1)

	if err := sdb.PingContext(ctx); err != nil {
		_ = sdb.Close()
		return nil, ConnectionError(profile.Name, path, err)
	}

	return &sqliteHandle{sdb: sdb, profile: profile, path: path}, nil
}

func (h *sqliteHandle) begin(ctx context.Context) (*sql.Tx, error) {
	if h.tx != nil {
		return h.tx, nil
	}
	tx, err := h.sdb.BeginTx(ctx, nil)
	if err != nil {
		return nil, TxError(h.profile.Name, "begin", err)
	}
	h.tx = tx
	return tx, nil
}

func (h *sqliteHandle) Query(
	ctx context.Context, query string, args ...any,
) ([][]any, error) {
	tx, err := h.begin(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, QueryError(h.profile.Name, query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, QueryError(h.profile.Name, query, err)
	}

	var res [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, QueryError(h.profile.Name, query, err)
		}
		res = append(res, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError(h.profile.Name, query, err)
	}
	return res, nil
}

func (h *sqliteHandle) Exec(
	ctx context.Context, query string, args ...any,
) error {
	tx, err := h.begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return ExecError(h.profile.Name, query, err)
	}
	return nil
}

func (h *sqliteHandle) InsertReturningID(
	ctx context.Context, table string, cols []string, vals []any,
) (int64, error) {
	tx, err := h.begin(ctx)
	if err != nil {
		return 0, err
	}

	query := insertSQL(table, cols, h.Placeholder)
	res, err := tx.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, ExecError(h.profile.Name, query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, ExecError(h.profile.Name, query, err)
	}
	return id, nil
}

func (h *sqliteHandle) Commit(ctx context.Context) error {
	if h.tx == nil {
		return nil
	}
	tx := h.tx
	h.tx = nil
	if err := tx.Commit(); err != nil {
		return TxError(h.profile.Name, "commit", err)
	}
	return nil
}

func (h *sqliteHandle) Rollback(ctx context.Context) error {
	if h.tx == nil {
		return nil
	}
	tx := h.tx
	h.tx = nil
	if err := tx.Rollback(); err != nil {
		return TxError(h.profile.Name, "rollback", err)
	}
	return nil
}

func (h *sqliteHandle) Close(ctx context.Context) error {
	_ = h.Rollback(ctx)
	return h.sdb.Close()
}

func (h *sqliteHandle) Kind() db.Kind       { return db.KindSQLite }
func (h *sqliteHandle) Env() db.EnvClass    { return h.profile.Env }
func (h *sqliteHandle) ProfileName() string { return h.profile.Name }
func (h *sqliteHandle) Placeholder(int) string { return "?" }

// insertSQL builds an INSERT statement with quoted identifiers and
// dialect placeholders.
func insertSQL(
	table string, cols []string, placeholder func(int) string,
) string {
	var b strings.Builder
	b.WriteString(`INSERT INTO "`)
	b.WriteString(table)
	b.WriteString(`" (`)
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`"`)
		b.WriteString(c)
		b.WriteString(`"`)
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholder(i + 1))
	}
	b.WriteString(")")
	return b.String()
}
