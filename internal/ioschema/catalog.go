// Package ioschema provides live schema metadata for the clone engine
// and the GORM-based schema bootstrap for `gyadmin init`. This is an
// impure I/O package implementing contracts defined in pkg/.
package ioschema

import (
	"context"
	"fmt"

	"github.com/getyour/gyadmin/pkg/db"
)

// Columns returns the writable columns of table in the order the store
// reports them, excluding the id primary key. Column sets come from
// live metadata so the engine never depends on a hard-coded shape.
func Columns(
	ctx context.Context, h db.Handle, table string,
) ([]string, error) {
	switch h.Kind() {
	case db.KindPostgres:
		return pgColumns(ctx, h, table)
	default:
		return sqliteColumns(ctx, h, table)
	}
}

func pgColumns(
	ctx context.Context, h db.Handle, table string,
) ([]string, error) {
	rows, err := h.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		  AND column_name != 'id'
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, CatalogError(table, err)
	}
	if len(rows) == 0 {
		return nil, CatalogError(table,
			fmt.Errorf("table has no columns in the catalog"))
	}

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		name, ok := r[0].(string)
		if !ok {
			return nil, CatalogError(table,
				fmt.Errorf("unexpected column name value %v", r[0]))
		}
		cols = append(cols, name)
	}
	return cols, nil
}

func sqliteColumns(
	ctx context.Context, h db.Handle, table string,
) ([]string, error) {
	rows, err := h.Query(ctx,
		fmt.Sprintf(`SELECT name FROM pragma_table_info(%s)
		WHERE name != 'id' ORDER BY cid`, h.Placeholder(1)), table)
	if err != nil {
		return nil, CatalogError(table, err)
	}
	if len(rows) == 0 {
		return nil, CatalogError(table,
			fmt.Errorf("table does not exist"))
	}

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		name, ok := r[0].(string)
		if !ok {
			return nil, CatalogError(table,
				fmt.Errorf("unexpected column name value %v", r[0]))
		}
		cols = append(cols, name)
	}
	return cols, nil
}
