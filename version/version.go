// Package version holds the build version, set via ldflags.
package version

// Version is the current version of flycloud.
var Version = "dev"
