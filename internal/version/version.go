// Package version holds build information injected with -ldflags:
//
//	go build -ldflags "-X github.com/aatumaykin/tubedrop/internal/version.Version=1.2.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/aatumaykin/tubedrop/internal/constants"
)

var (
	Version   = constants.DefaultVersion
	BuildTime = constants.DefaultBuildTime
	GitCommit = constants.DefaultGitCommit
	GoVersion = runtime.Version()
)

func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// Info is the build information as reported by `tubedrop version`.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information. When the commit was not injected
// it falls back to the VCS revision recorded by the Go toolchain.
func Get() Info {
	commit := GitCommit
	if commit == constants.DefaultGitCommit {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					commit = shortCommit(s.Value)
				}
			}
		}
	}
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: commit,
		GoVersion: GoVersion,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("tubedrop %s (commit %s, built %s, %s)", i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}

func FormatStartupMessage() string {
	return fmt.Sprintf("📼 tubedrop %s starting (build %s)", Version, BuildTime)
}

func shortCommit(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
