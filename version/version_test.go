package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	assert.Equal(t, "scriptpack (devel)", Info{Version: "(devel)"}.String())
	assert.Equal(t, "scriptpack v0.3.0 (commit abcdef1)", Info{Version: "v0.3.0", Commit: "abcdef1234"}.String())
	assert.Equal(t, "scriptpack v0.3.0 (commit abc, modified)", Info{Version: "v0.3.0", Commit: "abc", Modified: true}.String())
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/teranos/scriptpack", Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs", Value: "git"},
			{Key: "vcs.revision", Value: "abcdef1234567890"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	info := fromBuildInfo(bi, "")
	assert.Equal(t, "v0.3.0", info.Version)
	assert.Equal(t, "abcdef1234567890", info.Commit)
	assert.True(t, info.Modified)

	assert.Equal(t, "v1.0.0", fromBuildInfo(bi, "v1.0.0").Version, "ldflags override wins")
	assert.Equal(t, "(devel)", fromBuildInfo(nil, "").Version)
}

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}
