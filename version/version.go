// Package version holds build-time version information.
// Values are injected via -ldflags at build time.
package version

var (
	// GitRelease is the release tag (e.g. "v0.3.1").
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
)
