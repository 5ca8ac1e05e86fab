package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppInfo(t *testing.T) {
	info := DefaultAppInfo()

	assert.Equal(t, "nlquery-api", info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.NotEmpty(t, info.BuildTime)
}

func TestAppInfo_GetBuildInfo(t *testing.T) {
	info := NewAppInfo("svc", "1.2.3", "2024-01-01T00:00:00Z", "abc123", "production")

	buildInfo := info.GetBuildInfo()
	assert.Equal(t, "svc", buildInfo["name"])
	assert.Equal(t, "1.2.3", buildInfo["version"])
	assert.Equal(t, "2024-01-01T00:00:00Z", buildInfo["build_time"])
	assert.Equal(t, "abc123", buildInfo["git_commit"])
	assert.Equal(t, "production", buildInfo["environment"])
	assert.Equal(t, runtime.Version(), buildInfo["go_version"])
}
