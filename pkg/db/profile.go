package db

import (
	"fmt"
	"strings"
)

// EnvClass is the semantic category of a store used to gate destructive
// operations. Cloning never overwrites records in a prod-class target.
type EnvClass int

const (
	// EnvProd is a production environment.
	EnvProd EnvClass = iota
	// EnvDev is a development environment.
	EnvDev
	// EnvLocal is the single-file local store.
	EnvLocal
)

func (e EnvClass) String() string {
	switch e {
	case EnvProd:
		return "prod"
	case EnvDev:
		return "dev"
	case EnvLocal:
		return "local"
	}
	return "unknown"
}

// Profile is a parsed "<app>_<env>" profile name.
type Profile struct {
	// Name is the full profile string, e.g. "getyour_prod".
	Name string
	// App is the application prefix, e.g. "getyour".
	App string
	// Env is the environment class derived from the suffix.
	Env EnvClass
}

// ParseProfile splits a "<app>_<env>" profile string. The environment
// suffix must be one of prod, dev or local; "_local" selects the
// single-file store.
func ParseProfile(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, "_")
	if idx <= 0 || idx == len(name)-1 {
		return Profile{},
			fmt.Errorf("profile %q is not of the form <app>_<env>", name)
	}

	res := Profile{Name: name, App: name[:idx]}
	switch name[idx+1:] {
	case "prod":
		res.Env = EnvProd
	case "dev":
		res.Env = EnvDev
	case "local":
		res.Env = EnvLocal
	default:
		return Profile{}, fmt.Errorf(
			"profile %q: environment %q not recognized (want prod, dev or local)",
			name, name[idx+1:],
		)
	}
	return res, nil
}

// IsLocal reports whether the profile selects the single-file store.
func (p Profile) IsLocal() bool {
	return p.Env == EnvLocal
}
