// Package version holds build metadata, overridable with ldflags:
// go build -ldflags "-X dts2as/internal/shared/version.Version=1.2.0"
package version

var (
	Version = "0.1.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"
)

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}
