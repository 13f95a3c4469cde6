package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string

	for _, name := range slices.Sorted(maps.Keys(c.Profiles)) {
		res = append(res, OptProfile(name, c.Profiles[name]))
	}

	s = c.LocalPath
	if s != "" {
		res = append(res, OptLocalPath(s))
	}

	s = c.Clone.TemplateAccount
	if s != "" {
		res = append(res, OptCloneTemplateAccount(s))
	}
	s = c.Clone.DevProfile
	if s != "" {
		res = append(res, OptCloneDevProfile(s))
	}

	s = c.Extract.OutputDir
	if s != "" {
		res = append(res, OptExtractOutputDir(s))
	}
	s = c.Extract.UserFilesDir
	if s != "" {
		res = append(res, OptExtractUserFilesDir(s))
	}
	s = c.Extract.FilenameSuffix
	if s != "" {
		res = append(res, OptExtractFilenameSuffix(s))
	}
	s = c.Extract.Profile
	if s != "" {
		res = append(res, OptExtractProfile(s))
	}

	s = c.Blob.Bucket
	if s != "" {
		res = append(res, OptBlobBucket(s))
	}
	s = c.Blob.Region
	if s != "" {
		res = append(res, OptBlobRegion(s))
	}
	if c.Blob.Endpoint != "" {
		res = append(res, OptBlobEndpoint(c.Blob.Endpoint))
	}
	if c.Blob.AccessKeyID != "" || c.Blob.SecretAccessKey != "" {
		res = append(res,
			OptBlobCredentials(c.Blob.AccessKeyID, c.Blob.SecretAccessKey))
	}
	if c.Blob.PathStyle {
		res = append(res, OptBlobPathStyle(true))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	if c.JobsNumber > 0 {
		res = append(res, OptJobsNumber(c.JobsNumber))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		lines = append(lines, fmt.Sprintf("  * %s", v))
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
