// Package version exposes build metadata injected at link time.
package version

// Overridden via -ldflags "-X ..." in release builds; the zero values
// identify a local development build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, git commit and build date.
func Info() (version, commit, date string) {
	return Version, GitCommit, BuildDate
}
