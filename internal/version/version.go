// Package version exposes build metadata injected through ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Name is the daemon name reported by the API and the CLI.
const Name = "everloopd"

var (
	// Version is set via -ldflags "-X .../version.Version=...".
	Version = "dev"
	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"
	// BuildDate is the RFC 3339 build time.
	BuildDate = "unknown"
)

// Info contains version and build metadata.
type Info struct {
	Name      string `json:"name" example:"everloopd" doc:"Daemon name"`
	Version   string `json:"version" example:"1.2.0" doc:"Release version"`
	GitCommit string `json:"git_commit" example:"3f2a9c1" doc:"Source commit"`
	BuildDate string `json:"build_date" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain"`
	Platform  string `json:"platform" example:"linux/arm" doc:"Target OS and architecture"`
}

// Get returns version and build information.
func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns "everloopd <version> (<commit>)".
func String() string {
	return fmt.Sprintf("%s %s (%s)", Name, Version, GitCommit)
}
