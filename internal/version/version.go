// Package version provides build information for tab-recall.
package version

import (
	"runtime"
	"runtime/debug"
)

// Version is overridden at build time using ldflags.
var Version = "development"

// Commit is the git commit hash, overridden at build time using ldflags.
// When left unset the VCS revision embedded by the Go toolchain is used.
var Commit = "unknown"

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns the version including the commit hash if available.
func String() string {
	if c := commit(); c != "unknown" {
		return Version + "+" + c
	}
	return Version
}

// Info is the structured form printed by `tab-recall version --json`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return Info{
		Version:   Version,
		Commit:    commit(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 7 {
				return s.Value[:7]
			}
			return s.Value
		}
	}
	return Commit
}
