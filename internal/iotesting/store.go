// Package iotesting provides shared fixtures for tests that need live
// stores: temporary SQLite files carrying the application schema, and
// seed helpers for the tables the clone engine walks.
package iotesting

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getyour/gyadmin/internal/iodb"
	"github.com/getyour/gyadmin/internal/ioschema"
	"github.com/getyour/gyadmin/pkg/db"
	"github.com/stretchr/testify/require"
)

// OpenStore creates a fresh SQLite store with the application schema
// under the given environment class. The file lives in a test temp dir
// and the handle is closed on test cleanup.
func OpenStore(t *testing.T, env db.EnvClass) db.Handle {
	t.Helper()
	profile := "getyour_" + env.String()
	return OpenStoreAt(t, env,
		filepath.Join(t.TempDir(), profile+".sqlite"))
}

// OpenStoreAt is OpenStore with an explicit SQLite file path, for tests
// that reopen the same store through a provider.
func OpenStoreAt(t *testing.T, env db.EnvClass, path string) db.Handle {
	t.Helper()
	ctx := context.Background()

	profile := db.Profile{
		Name: "getyour_" + env.String(),
		App:  "getyour",
		Env:  env,
	}

	h, err := iodb.OpenSQLite(ctx, profile, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })

	for _, stmt := range strings.Split(ioschema.LocalDDL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		require.NoError(t, h.Exec(ctx, stmt))
	}
	require.NoError(t, h.Commit(ctx))

	return h
}

// AddressSHA1 hashes address content the way the application does when
// it fills app_addressrd.address_sha1.
func AddressSHA1(parts ...string) string {
	sum := sha1.Sum([]byte(strings.ToUpper(strings.Join(parts, " "))))
	return hex.EncodeToString(sum[:])
}

// SeedAddressRD inserts an address reference row and returns its id.
func SeedAddressRD(
	t *testing.T, h db.Handle, address1, city, state, zip string,
) int64 {
	t.Helper()
	ctx := context.Background()

	id, err := h.InsertReturningID(ctx, "app_addressrd",
		[]string{
			"address1", "address2", "city", "state", "zip_code",
			"address_sha1", "is_in_gma", "is_city_covered",
			"has_connexion", "is_verified",
		},
		[]any{
			address1, "", city, state, zip,
			AddressSHA1(address1, city, state, zip),
			true, true, false, true,
		},
	)
	require.NoError(t, err)
	require.NoError(t, h.Commit(ctx))
	return id
}

// SeedUser inserts a full record set for one user: the user row plus one
// row in every dependent table. addrID must reference an existing
// app_addressrd row in the same store. Returns the user id.
func SeedUser(
	t *testing.T, h db.Handle, email, password string, addrID int64,
) int64 {
	t.Helper()
	ctx := context.Background()

	userID, err := h.InsertReturningID(ctx, "app_user",
		[]string{
			"email", "password", "first_name", "last_name",
			"phone_number", "is_archived", "is_updated",
			"has_viewed_dashboard",
		},
		[]any{
			email, password, "Test", "Applicant",
			"+13035550100", false, false, true,
		},
	)
	require.NoError(t, err)

	MustExec(t, h,
		`INSERT INTO app_address
		(user_id, eligibility_address_id, mailing_address_id, is_verified, is_updated)
		VALUES (?, ?, ?, 1, 0)`,
		userID, addrID, addrID)
	MustExec(t, h,
		`INSERT INTO app_household
		(user_id, duration_at_address, number_persons_in_household,
		 income_as_fraction_of_ami, is_income_verified, is_updated)
		VALUES (?, 'More than 3 years', 2, 0.3, 1, 0)`,
		userID)
	MustExec(t, h,
		`INSERT INTO app_householdmembers (user_id, household_info, is_updated)
		VALUES (?, '{"persons_in_household": []}', 0)`,
		userID)
	MustExec(t, h,
		`INSERT INTO app_eligibilityprogram (user_id, program_id, document_path)
		VALUES (?, 1, 'user_1/doc.pdf')`,
		userID)
	MustExec(t, h,
		`INSERT INTO app_iqprogram (user_id, program_id, is_enrolled)
		VALUES (?, 1, 0)`,
		userID)
	MustExec(t, h,
		`INSERT INTO app_userhist (user_id, historical_values)
		VALUES (?, '{"email": "old@example.org"}')`,
		userID)

	require.NoError(t, h.Commit(ctx))
	return userID
}

// MustExec runs a statement and fails the test on error. The statement
// stays inside the handle's open transaction.
func MustExec(t *testing.T, h db.Handle, sql string, args ...any) {
	t.Helper()
	require.NoError(t, h.Exec(context.Background(), sql, args...))
}

// CountRows returns the number of rows in table matching the optional
// WHERE clause.
func CountRows(
	t *testing.T, h db.Handle, table, where string, args ...any,
) int64 {
	t.Helper()
	q := `SELECT count(*) FROM "` + table + `"`
	if where != "" {
		q += " WHERE " + where
	}
	rows, err := h.Query(context.Background(), q, args...)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0][0].(int64)
}
