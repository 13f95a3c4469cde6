package ioschema

import (
	"context"
	"fmt"
	"strings"

	"github.com/getyour/gyadmin/internal/iodb"
	"github.com/getyour/gyadmin/pkg/config"
	"github.com/getyour/gyadmin/pkg/db"
	"github.com/getyour/gyadmin/pkg/schema"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Bootstrap creates or updates the application schema in the named
// environment. PostgreSQL environments go through GORM AutoMigrate over
// the pkg/schema models; the local SQLite store is created from the
// embedded DDL. Production environments are refused.
func Bootstrap(
	ctx context.Context, cfg *config.Config, name string,
) error {
	profile, err := db.ParseProfile(name)
	if err != nil {
		return BootstrapRefusedError(name, err)
	}

	if profile.Env == db.EnvProd {
		return BootstrapRefusedError(name,
			fmt.Errorf("refusing to bootstrap a production environment"))
	}

	if profile.IsLocal() {
		return bootstrapLocal(ctx, cfg, profile)
	}
	return bootstrapPostgres(ctx, cfg, profile)
}

func bootstrapPostgres(
	ctx context.Context, cfg *config.Config, profile db.Profile,
) error {
	pcfg, ok := cfg.Profiles[profile.Name]
	if !ok {
		return BootstrapRefusedError(profile.Name,
			fmt.Errorf("profile is not configured"))
	}

	sslMode := pcfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pcfg.Host, pcfg.Port, pcfg.User, pcfg.Password,
		pcfg.Database, sslMode,
	)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return GORMConnectionError(profile.Name, err)
	}

	if err := schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return CreateSchemaError(profile.Name, err)
	}
	return nil
}

func bootstrapLocal(
	ctx context.Context, cfg *config.Config, profile db.Profile,
) error {
	path := cfg.LocalPath
	if path == "" {
		path = config.LocalStorePath(cfg.HomeDir)
	}

	h, err := iodb.OpenSQLite(ctx, profile, path)
	if err != nil {
		return err
	}
	defer h.Close(ctx)

	for _, stmt := range strings.Split(LocalDDL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		// CREATE TABLE fails on re-run; tolerate existing tables so the
		// bootstrap stays idempotent.
		if err := h.Exec(ctx, ifNotExists(stmt)); err != nil {
			_ = h.Rollback(ctx)
			return CreateSchemaError(profile.Name, err)
		}
	}
	return h.Commit(ctx)
}

func ifNotExists(stmt string) string {
	return strings.Replace(stmt,
		"CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
}
