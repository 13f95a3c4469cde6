package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptProfile adds or replaces one environment profile.
func OptProfile(name string, p ProfileConfig) Option {
	name = strings.TrimSpace(name)
	return func(c *Config) {
		if !isValidString("Profile Name", name) {
			return
		}
		if c.Profiles == nil {
			c.Profiles = make(map[string]ProfileConfig)
		}
		c.Profiles[name] = p
	}
}

// OptLocalPath sets the SQLite file backing "_local" profiles.
func OptLocalPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Local Path", s) {
			c.LocalPath = s
		}
	}
}

// OptCloneTemplateAccount sets the email of the template account whose
// password hash is assigned to cloned users.
func OptCloneTemplateAccount(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Clone Template Account", s) {
			c.Clone.TemplateAccount = s
		}
	}
}

// OptCloneDevProfile sets the auxiliary dev profile used for template
// password lookup.
func OptCloneDevProfile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Clone Dev Profile", s) {
			c.Clone.DevProfile = s
		}
	}
}

// OptExtractOutputDir sets the directory receiving CSV artifacts.
func OptExtractOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Extract Output Dir", s) {
			c.Extract.OutputDir = s
		}
	}
}

// OptExtractUserFilesDir sets the directory receiving downloaded documents.
func OptExtractUserFilesDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Extract User Files Dir", s) {
			c.Extract.UserFilesDir = s
		}
	}
}

// OptExtractFilenameSuffix sets the suffix for dated extract filenames.
func OptExtractFilenameSuffix(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Extract Filename Suffix", s) {
			c.Extract.FilenameSuffix = s
		}
	}
}

// OptExtractProfile sets the profile extracts run against.
func OptExtractProfile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Extract Profile", s) {
			c.Extract.Profile = s
		}
	}
}

// OptBlobBucket sets the applicant-document bucket.
func OptBlobBucket(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Blob Bucket", s) {
			c.Blob.Bucket = s
		}
	}
}

// OptBlobRegion sets the bucket region.
func OptBlobRegion(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Blob Region", s) {
			c.Blob.Region = s
		}
	}
}

// OptBlobEndpoint sets an optional custom S3 endpoint.
func OptBlobEndpoint(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		// Empty endpoint is valid (AWS default).
		c.Blob.Endpoint = s
	}
}

// OptBlobCredentials sets static S3 credentials.
func OptBlobCredentials(id, secret string) Option {
	return func(c *Config) {
		c.Blob.AccessKeyID = strings.TrimSpace(id)
		c.Blob.SecretAccessKey = strings.TrimSpace(secret)
	}
}

// OptBlobPathStyle forces path-style bucket addressing.
func OptBlobPathStyle(b bool) Option {
	return func(c *Config) {
		c.Blob.PathStyle = b
	}
}

// OptLogFormat sets the log output format ('json' or 'text').
func OptLogFormat(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogLevel sets the log level ('debug', 'info', 'warn', 'error').
func OptLogLevel(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogDestination sets the log destination ('file', 'stdout', 'stderr').
func OptLogDestination(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent download workers.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config/cache/log paths.
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Dir", s) {
			c.HomeDir = s
		}
	}
}
