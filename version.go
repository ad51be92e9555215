package labmeta

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the semantic version of the labmeta library.
const Version = "0.1.0"

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string `yaml:"version"`
	GitCommit string `yaml:"git_commit"`
	BuildTime string `yaml:"build_time"`
	GoVersion string `yaml:"go_version"`
}

// String formats the info on one line.
func (v VersionInfo) String() string {
	return fmt.Sprintf("labmeta %s (commit %s, built %s, %s)", v.Version, v.GitCommit, v.BuildTime, v.GoVersion)
}

// GetVersionInfo returns the version and build details.
//
// GitCommit and BuildTime come from -ldflags when set:
//
//	go build -ldflags="-X github.com/simonhull/labmeta.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/labmeta.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// and otherwise from the VCS stamp embedded by the go command.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.GitCommit == "unknown":
				info.GitCommit = s.Value
			case s.Key == "vcs.time" && info.BuildTime == "unknown":
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// Set at build time via -ldflags.
var (
	gitCommit = "unknown"
	buildTime = "unknown"
)
