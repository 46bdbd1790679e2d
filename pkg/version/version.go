// Package version holds build metadata injected with -ldflags.
package version

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line printed by the CLI.
func String() string {
	return "appmonitor " + Version + " (" + Commit + ") built " + Date
}
