// Package version exposes the build stamp, overridden at link time:
//
//	go build -ldflags "-X github.com/txstate-etc/featured-search-results/internal/version.Version=v1.2.3"
package version

var (
	// Version is the release tag or branch this binary was built from.
	Version = "dev"
	// Commit is the git revision of the build.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)
