// Package version holds build metadata for the shelfdex binary,
// injected at build time:
//
//	go build -ldflags "-X github.com/shelfdex/shelfdex/internal/version.Version=v1.2.3 \
//	    -X github.com/shelfdex/shelfdex/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
