package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GoVersion, info.GoVersion)
}

func TestString(t *testing.T) {
	info := BuildInfo{
		Version:   "1.2.3",
		BuildDate: "2026-08-30",
		GitCommit: "abcdef0123456789",
		GoVersion: "go1.24",
	}
	s := info.String()
	assert.Contains(t, s, "Version: 1.2.3")
	assert.Contains(t, s, "Build Date: 2026-08-30")
	assert.Contains(t, s, "Git Commit: abcdef0")
	assert.NotContains(t, s, "abcdef01")
}

func TestIsRelease(t *testing.T) {
	assert.False(t, BuildInfo{Version: "dev"}.IsRelease())
	assert.False(t, BuildInfo{Version: "1.0.0-rc1"}.IsRelease())
	assert.True(t, BuildInfo{Version: "1.0.0"}.IsRelease())
}
