package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, revision string) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		if revision == "" {
			return nil, false
		}
		return &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: revision}}}, true
	}
}

func withVersion(t *testing.T, version, commit string) {
	t.Helper()
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() {
		Version = origVersion
		Commit = origCommit
	})
	Version = version
	Commit = commit
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		revision string
		expected string
	}{
		{"development without commit", "development", "unknown", "", "development"},
		{"release with commit", "1.0.0", "abc1234", "", "1.0.0+abc1234"},
		{"ldflags commit wins over vcs", "1.0.0", "abc1234", "ffffffffffff", "1.0.0+abc1234"},
		{"vcs revision is shortened", "0.5.0", "unknown", "def5678901234", "0.5.0+def5678"},
		{"short vcs revision kept", "0.5.0", "unknown", "def5", "0.5.0+def5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version, tt.commit)
			withBuildInfo(t, tt.revision)
			assert.Equal(t, tt.expected, String())
		})
	}
}

func TestCurrent(t *testing.T) {
	withVersion(t, "1.2.3", "cafe123")
	withBuildInfo(t, "")

	info := Current()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "cafe123", info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}
