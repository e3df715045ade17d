// Package version holds the version string printed by the CLI and
// reported on the service root path.
package version

// Version is the release version of this build.
var Version = "2.1.0"
