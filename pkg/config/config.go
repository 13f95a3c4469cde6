// Package config provides configuration management for gyadmin.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml >
// defaults.
//
// # Design Principles
//
//   - Default config (from New()) is always valid - no validation needed
//   - All mutations go through Option functions - the only way to modify Config
//   - Invalid options are rejected with gn.Warn() - config remains valid
//   - ToOptions() converts persistent fields (those in config.yaml)
//
// # Environment Variables
//
// Use the GYADMIN_ prefix with underscores for nesting:
//
//	GYADMIN_CLONE_TEMPLATE_ACCOUNT=clone-template@example.org
//	GYADMIN_BLOB_BUCKET=getyour-user-files
//	GYADMIN_LOG_LEVEL=info
//
// Database credentials are per-profile and live only in config.yaml; they
// are the Go rendition of the credential-profile lookup the deployment
// tooling used before.
package config

import (
	"runtime"
)

// Config represents the complete gyadmin configuration.
type Config struct {
	// Profiles maps environment profile names ("getyour_prod",
	// "getyour_dev") to PostgreSQL connection settings. Profiles with the
	// "_local" suffix ignore this map and use LocalPath instead.
	Profiles map[string]ProfileConfig `mapstructure:"profiles" yaml:"profiles"`

	// LocalPath is the SQLite database file backing "_local" profiles.
	// Empty means <cache dir>/getyour_local.sqlite, resolved at startup.
	LocalPath string `mapstructure:"local_path" yaml:"local_path"`

	// Clone contains settings specific to the clone command.
	Clone CloneConfig `mapstructure:"clone" yaml:"clone"`

	// Extract contains settings specific to the extract command.
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`

	// Blob configures the S3-compatible store holding applicant documents.
	Blob BlobConfig `mapstructure:"blob" yaml:"blob"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for parallel
	// operations (currently only document downloads).
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It is set by the CLI during init; there is no default value for it.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// ProfileConfig contains PostgreSQL connection parameters for one
// environment profile.
type ProfileConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// CloneConfig contains settings specific to the clone command.
type CloneConfig struct {
	// TemplateAccount is the email of the account whose password hash is
	// assigned to every cloned user. The source user's own password is
	// never copied.
	TemplateAccount string `mapstructure:"template_account" yaml:"template_account"`

	// DevProfile is the profile opened to fetch the template password when
	// neither the source nor the target connection is dev-class.
	DevProfile string `mapstructure:"dev_profile" yaml:"dev_profile"`
}

// ExtractConfig contains settings specific to the extract command.
type ExtractConfig struct {
	// OutputDir receives the CSV artifacts. Empty means
	// <data dir>/extracts, resolved at startup.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// UserFilesDir receives downloaded applicant documents. Empty means
	// <data dir>/user_files, resolved at startup.
	UserFilesDir string `mapstructure:"user_files_dir" yaml:"user_files_dir"`

	// FilenameSuffix is appended to every dated extract filename.
	FilenameSuffix string `mapstructure:"filename_suffix" yaml:"filename_suffix"`

	// Profile is the profile extracts run against. Extracts are read-only
	// except for the is_updated reset after program extracts.
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// BlobConfig configures the S3-compatible applicant-document store.
type BlobConfig struct {
	// Bucket holds applicant documents under user_<id>/ prefixes.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region of the bucket. Default "us-east-1".
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint is an optional custom endpoint (MinIO, Azure S3 gateway).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// AccessKeyID and SecretAccessKey select static credentials; when
	// empty the default AWS credentials chain is used.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// PathStyle forces path-style bucket addressing (needed by MinIO).
	PathStyle bool `mapstructure:"path_style" yaml:"path_style"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Profiles: map[string]ProfileConfig{
			"getyour_dev": {
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "postgres",
				Database: "getyour",
				SSLMode:  "disable",
			},
		},
		Clone: CloneConfig{
			DevProfile: "getyour_dev",
		},
		Extract: ExtractConfig{
			FilenameSuffix: "IQ Applicants.csv",
			Profile:        "getyour_prod",
		},
		Blob: BlobConfig{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now the file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
