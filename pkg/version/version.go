// Package version reports how the running dirtree binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// AppName is the name reported in logs and by the version command.
const AppName = "dirtree"

const (
	unstampedVersion = "dev"
	develVersion     = "(devel)"
	revisionSetting  = "vcs.revision"
	timeSetting      = "vcs.time"
)

// Stamped with -ldflags "-X dirtree/pkg/version.Version=1.2.3 -X ...Commit=... -X ...BuildTime=...".
// Left unset, Get falls back to the module build info embedded by the Go toolchain.
var (
	Version   = unstampedVersion
	Commit    = "none"
	BuildTime = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
}

// Get returns the version information, preferring ldflags values over build info.
func Get() Info {
	buildInfo, _ := debug.ReadBuildInfo()
	return resolve(buildInfo)
}

func resolve(buildInfo *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		GitCommit: Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if buildInfo == nil || Version != unstampedVersion {
		return info
	}

	if moduleVersion := buildInfo.Main.Version; moduleVersion != "" && moduleVersion != develVersion {
		info.Version = moduleVersion
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case revisionSetting:
			info.GitCommit = setting.Value
		case timeSetting:
			info.BuildTime = setting.Value
		}
	}
	return info
}

// String renders the information on one line, e.g.
// dirtree version 1.2.3 (commit: abcdefg) built at 2024-04-27T15:04:05Z with go1.23.1 on linux/amd64
func (i Info) String() string {
	return fmt.Sprintf("%s version %s (commit: %s) built at %s with %s on %s",
		AppName, i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform)
}
