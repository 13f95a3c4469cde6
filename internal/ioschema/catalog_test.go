package ioschema_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/getyour/gyadmin/internal/iodb"
	"github.com/getyour/gyadmin/internal/ioschema"
	"github.com/getyour/gyadmin/internal/iotesting"
	"github.com/getyour/gyadmin/pkg/config"
	"github.com/getyour/gyadmin/pkg/db"
	"github.com/getyour/gyadmin/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns_ExcludesID(t *testing.T) {
	ctx := context.Background()
	h := iotesting.OpenStore(t, db.EnvLocal)

	cols, err := ioschema.Columns(ctx, h, "app_user")
	require.NoError(t, err)

	assert.NotContains(t, cols, "id",
		"primary key is assigned by the target, never copied")
	assert.Contains(t, cols, "email")
	assert.Contains(t, cols, "password")
	assert.Contains(t, cols, "phone_number")
}

// TestColumns_StoreOrder verifies column order follows the store's
// declaration order.
func TestColumns_StoreOrder(t *testing.T) {
	ctx := context.Background()
	h := iotesting.OpenStore(t, db.EnvLocal)

	cols, err := ioschema.Columns(ctx, h, "app_addresshist")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"user_id", "historical_values", "created"}, cols)
}

func TestColumns_MissingTable(t *testing.T) {
	ctx := context.Background()
	h := iotesting.OpenStore(t, db.EnvLocal)

	_, err := ioschema.Columns(ctx, h, "app_nonexistent")
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.SchemaCatalogError, gnErr.Code)
}

// TestBootstrap_RefusesProd verifies production environments cannot be
// bootstrapped.
func TestBootstrap_RefusesProd(t *testing.T) {
	ctx := context.Background()

	err := ioschema.Bootstrap(ctx, config.New(), "getyour_prod")
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.SchemaBootstrapRefusedError, gnErr.Code)
}

// TestBootstrap_LocalStore verifies the local SQLite store is created
// with the application tables and the bootstrap is idempotent.
func TestBootstrap_LocalStore(t *testing.T) {
	ctx := context.Background()

	cfg := config.New()
	cfg.LocalPath = filepath.Join(t.TempDir(), "local.sqlite")

	require.NoError(t, ioschema.Bootstrap(ctx, cfg, "getyour_local"))
	// Second run must not fail on existing tables.
	require.NoError(t, ioschema.Bootstrap(ctx, cfg, "getyour_local"))

	profile := db.Profile{
		Name: "getyour_local", App: "getyour", Env: db.EnvLocal,
	}
	h, err := iodb.OpenSQLite(ctx, profile, cfg.LocalPath)
	require.NoError(t, err)
	defer h.Close(ctx)

	cols, err := ioschema.Columns(ctx, h, "app_feedback")
	require.NoError(t, err)
	assert.Contains(t, cols, "star_rating")
}
