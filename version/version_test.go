package version

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	origRead := readBuildInfo
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	t.Cleanup(func() {
		readBuildInfo = origRead
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGetDefaults(t *testing.T) {
	stubBuildInfo(t, nil)
	Version, GitCommit, BuildTime = "dev", "", ""

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.Release {
		t.Error("dev should not be a release")
	}
	if got := info.String(); got != "dev" {
		t.Errorf("expected 'dev', got %q", got)
	}
}

func TestGetLinkerValuesWin(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffffffffffff"},
			{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
		},
	})
	Version, GitCommit, BuildTime = "1.2.0", "abc1234", "2024-01-15T10:30:00Z"

	info := Get()
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildTime != "2024-01-15T10:30:00Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
	if !info.Release {
		t.Error("1.2.0 should be a release")
	}
	want := "1.2.0-abc1234 (built 2024-01-15T10:30:00Z) go1.26.0"
	if got := info.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGetFallsBackToVCS(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2024-02-01T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})
	Version, GitCommit, BuildTime = "1.2.0", "", ""

	info := Get()
	if info.GitCommit != "0123456" {
		t.Errorf("expected shortened commit, got %q", info.GitCommit)
	}
	if !info.Dirty || info.Release {
		t.Errorf("expected dirty non-release build, got %+v", info)
	}
	if got := info.Short(); got != "1.2.0-0123456-dirty" {
		t.Errorf("unexpected short version %q", got)
	}
}
