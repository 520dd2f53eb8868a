// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/cryptopicks/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/cryptopicks/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/cryptopicks/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	         ./cmd/engine
package version

import "runtime"

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildInfo is the build metadata reported by the health endpoint.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Info returns the current build metadata.
func Info() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a one-line version string, e.g. "1.0.0 (abc123) built 2024-01-15T12:00:00Z".
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
