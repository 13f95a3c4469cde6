package ioclone

import (
	"context"
	"testing"

	"github.com/getyour/gyadmin/internal/iotesting"
	"github.com/getyour/gyadmin/pkg/db"
	"github.com/getyour/gyadmin/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAddress_HitReturnsExistingID(t *testing.T) {
	ctx := context.Background()
	src := iotesting.OpenStore(t, db.EnvDev)
	tgt := iotesting.OpenStore(t, db.EnvLocal)

	srcID := iotesting.SeedAddressRD(t, src,
		"123 Main St", "Fort Collins", "CO", "80521")
	// Same content, different identifier in the target.
	iotesting.MustExec(t, tgt,
		`INSERT INTO app_addressrd (id, address1, city, state, zip_code, address_sha1)
		VALUES (99, '123 Main St', 'Fort Collins', 'CO', '80521', ?)`,
		iotesting.AddressSHA1("123 Main St", "Fort Collins", "CO", "80521"))
	require.NoError(t, tgt.Commit(ctx))

	got, err := resolveAddress(ctx, src, tgt, srcID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got)

	n := iotesting.CountRows(t, tgt, "app_addressrd", "")
	assert.Equal(t, int64(1), n, "a hit performs zero inserts")
}

func TestResolveAddress_MissCopiesAndCommits(t *testing.T) {
	ctx := context.Background()
	src := iotesting.OpenStore(t, db.EnvDev)
	tgt := iotesting.OpenStore(t, db.EnvLocal)

	srcID := iotesting.SeedAddressRD(t, src,
		"456 Elm St", "Fort Collins", "CO", "80524")

	got, err := resolveAddress(ctx, src, tgt, srcID)
	require.NoError(t, err)

	// The insert is committed independently; a rollback afterwards must
	// not remove it.
	require.NoError(t, tgt.Rollback(ctx))

	row, err := tgt.Query(ctx,
		`SELECT address1, address_sha1 FROM app_addressrd WHERE id = ?`, got)
	require.NoError(t, err)
	require.Len(t, row, 1)
	assert.Equal(t, "456 Elm St", row[0][0])
	assert.Equal(t,
		iotesting.AddressSHA1("456 Elm St", "Fort Collins", "CO", "80524"),
		row[0][1])
}

// TestResolveAddress_Idempotent verifies distinct source rows sharing a
// hash resolve to one target row.
func TestResolveAddress_Idempotent(t *testing.T) {
	ctx := context.Background()
	src := iotesting.OpenStore(t, db.EnvDev)
	tgt := iotesting.OpenStore(t, db.EnvLocal)

	srcID := iotesting.SeedAddressRD(t, src,
		"456 Elm St", "Fort Collins", "CO", "80524")

	first, err := resolveAddress(ctx, src, tgt, srcID)
	require.NoError(t, err)
	second, err := resolveAddress(ctx, src, tgt, srcID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	n := iotesting.CountRows(t, tgt, "app_addressrd", "")
	assert.Equal(t, int64(1), n)
}

// TestResolveAddress_DistinctHashes verifies differing content produces
// distinct target identifiers.
func TestResolveAddress_DistinctHashes(t *testing.T) {
	ctx := context.Background()
	src := iotesting.OpenStore(t, db.EnvDev)
	tgt := iotesting.OpenStore(t, db.EnvLocal)

	a := iotesting.SeedAddressRD(t, src,
		"456 Elm St", "Fort Collins", "CO", "80524")
	b := iotesting.SeedAddressRD(t, src,
		"789 Oak Ave", "Fort Collins", "CO", "80525")

	idA, err := resolveAddress(ctx, src, tgt, a)
	require.NoError(t, err)
	idB, err := resolveAddress(ctx, src, tgt, b)
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
}

func TestResolveAddress_MissingSource(t *testing.T) {
	ctx := context.Background()
	src := iotesting.OpenStore(t, db.EnvDev)
	tgt := iotesting.OpenStore(t, db.EnvLocal)

	_, err := resolveAddress(ctx, src, tgt, 12345)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CloneAddressError, gnErr.Code)
}
