package iodb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getyour/gyadmin/pkg/config"
	"github.com/getyour/gyadmin/pkg/db"
)

// provider resolves profile names to handles, caching live handles so a
// repeated Open during a batch run reuses the connection.
type provider struct {
	cfg     *config.Config
	handles map[string]db.Handle
}

// NewProvider creates a db.Provider backed by the configured profiles.
func NewProvider(cfg *config.Config) db.Provider {
	return &provider{
		cfg:     cfg,
		handles: make(map[string]db.Handle),
	}
}

func (p *provider) Open(
	ctx context.Context, name string,
) (db.Handle, error) {
	return p.OpenAt(ctx, name, "")
}

func (p *provider) OpenAt(
	ctx context.Context, name, localPath string,
) (db.Handle, error) {
	if h, ok := p.handles[name]; ok {
		return h, nil
	}

	profile, err := db.ParseProfile(name)
	if err != nil {
		return nil, ProfileError(name, err)
	}

	var h db.Handle
	if profile.IsLocal() {
		path := localPath
		if path == "" {
			path = p.cfg.LocalPath
		}
		if path == "" {
			path = config.LocalStorePath(p.cfg.HomeDir)
		}
		h, err = OpenSQLite(ctx, profile, path)
	} else {
		pcfg, ok := p.cfg.Profiles[name]
		if !ok {
			return nil, ProfileError(name,
				errors.New("profile is not configured"))
		}
		h, err = openPostgres(ctx, profile, pcfg)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Connected to store",
		"profile", name, "kind", h.Kind().String())
	p.handles[name] = h
	return h, nil
}

func (p *provider) Close(ctx context.Context, name string) error {
	h, ok := p.handles[name]
	if !ok {
		return nil
	}
	delete(p.handles, name)
	return h.Close(ctx)
}

func (p *provider) CloseAll(ctx context.Context) error {
	var errs []error
	for name, h := range p.handles {
		if err := h.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		delete(p.handles, name)
	}
	return errors.Join(errs...)
}
