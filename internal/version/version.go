// Package version holds build-time identity, overridden via -ldflags.
package version

// Version is the semantic version of this build.
var Version = "dev"

// Commit is the git commit this build was produced from.
var Commit = "unknown"
