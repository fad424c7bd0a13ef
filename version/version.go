// Package version reports which scriptpack build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version overrides the module version from the build info. Release builds
// set it with -ldflags "-X github.com/teranos/scriptpack/version.Version=vX.Y.Z".
var Version = ""

const develVersion = "(devel)"

// Info contains version and build information
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Modified  bool   `json:"modified,omitempty"` // built from a dirty tree
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return fromBuildInfo(bi, Version)
}

func fromBuildInfo(bi *debug.BuildInfo, override string) Info {
	info := Info{
		Version:   develVersion,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi != nil {
		if v := bi.Main.Version; v != "" {
			info.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if override != "" {
		info.Version = override
	}
	return info
}

// String returns a human-readable version string
func (i Info) String() string {
	s := "scriptpack " + i.Version
	switch {
	case i.Commit == "":
		return s
	case i.Modified:
		return fmt.Sprintf("%s (commit %s, modified)", s, shortCommit(i.Commit))
	default:
		return fmt.Sprintf("%s (commit %s)", s, shortCommit(i.Commit))
	}
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
