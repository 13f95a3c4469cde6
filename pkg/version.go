// Package app holds build-time metadata for the gyadmin binary.
package app

var (
	// Version is set by the build via ldflags.
	Version = "v0.3.1"
	// Build is a timestamp of the build, set via ldflags.
	Build = "n/a"
)
