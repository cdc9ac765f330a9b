// Package version holds build information, set at link time:
//
//	go build -ldflags "-X github.com/bookshelf-qa/library-e2e/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info is the build information as reported by `library-e2e version`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String is "v1.2.0 (abc1234, built 2025-12-19)".
func (i Info) String() string {
	return fmt.Sprintf("%s (%s, built %s)", i.Version, i.GitCommit, i.BuildDate)
}

// UserAgent is the User-Agent the API client sends.
func UserAgent() string {
	return "library-e2e/" + Version
}
