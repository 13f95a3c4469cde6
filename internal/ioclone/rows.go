package ioclone

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getyour/gyadmin/pkg/db"
	"github.com/jackc/pgx/v5/pgtype"
)

// userRewrite carries the identity fields that replace the source
// user's own values on insert.
type userRewrite struct {
	email    string
	password string
	phone    string

	// forceArchived marks the clone archived so it never surfaces in a
	// production target's reporting or notifications.
	forceArchived bool
}

// rewriteUserRow applies the identity rewrites to a user row in place.
func rewriteUserRow(cols []string, row []any, r userRewrite) {
	for i, col := range cols {
		switch col {
		case "email":
			row[i] = r.email
		case "password":
			row[i] = r.password
		case "phone_number":
			row[i] = r.phone
		case "is_archived":
			if r.forceArchived {
				row[i] = true
			}
		}
	}
}

// normalizeRow converts driver-specific values into forms the target
// handle accepts: structured values become canonical JSON strings, and
// arbitrary-precision numerics are narrowed when the target store has
// no native support for them.
func normalizeRow(row []any, target db.Kind) []any {
	vals := make([]any, len(row))
	for i, v := range row {
		vals[i] = normalizeValue(v, target)
	}
	return vals
}

func normalizeValue(v any, target db.Kind) any {
	switch val := v.(type) {
	case map[string]any, []any:
		// json.Marshal sorts object keys, which makes the string form
		// canonical.
		b, err := json.Marshal(val)
		if err != nil {
			return v
		}
		return string(b)
	case pgtype.Numeric:
		if target != db.KindSQLite {
			return v
		}
		if !val.Valid {
			return nil
		}
		if val.Exp >= 0 {
			if iv, err := val.Int64Value(); err == nil && iv.Valid {
				return iv.Int64
			}
		}
		if fv, err := val.Float64Value(); err == nil && fv.Valid {
			return fv.Float64
		}
		return v
	default:
		return v
	}
}

// asInt64 widens the integer forms the two drivers hand back for id
// columns.
func asInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case float64:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not an integer id", v, v)
	}
}

func joinIdents(cols []string) string {
	return strings.Join(cols, `", "`)
}
