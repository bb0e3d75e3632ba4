// Package version carries build metadata injected at link time, e.g.
// -ldflags "-X .../internal/version.Version=v1.2.0".
package version

// Defaults describe a plain source build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit, and build date.
func Info() (version, commit, date string) {
	return Version, GitCommit, BuildDate
}
