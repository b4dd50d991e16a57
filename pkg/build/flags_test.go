// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

// withLinkerVars sets the ldflags variables for one test and restores the
// package state afterwards.
func withLinkerVars(t *testing.T, name, time, commit, version string) {
	t.Helper()
	saved := *buildFlags
	savedVars := [4]string{buildName, buildTime, buildCommit, buildVersion}
	t.Cleanup(func() {
		*buildFlags = saved
		buildName, buildTime, buildCommit, buildVersion = savedVars[0], savedVars[1], savedVars[2], savedVars[3]
	})
	buildName, buildTime, buildCommit, buildVersion = name, time, commit, version
}

func TestDefaults(t *testing.T) {
	f := GetBuildFlags()
	if f.Name != "wtosc" || f.Version != "unknown" || f.Commit != "unknown" {
		t.Errorf("defaults = %+v", f)
	}
	if f.Description != "Real-time wavetable oscillator" {
		t.Errorf("Description = %q", f.Description)
	}
	if got := f.String(); got != "wtosc unknown (commit unknown, built unknown)" {
		t.Errorf("String() = %q", got)
	}
}

func TestInitialize(t *testing.T) {
	withLinkerVars(t, "wtosc", "2026-10-16", "abc123", "v0.2.0")
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	want := "wtosc v0.2.0 (commit abc123, built 2026-10-16)"
	if got := GetBuildFlags().String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if GetBuildFlags().Description != description {
		t.Error("Initialize() dropped the description")
	}
}

func TestInitializeIncomplete(t *testing.T) {
	withLinkerVars(t, "wtosc", "2026-10-16", "", "v0.2.0")
	err := Initialize()
	if err == nil || !strings.Contains(err.Error(), "BuildCommit") {
		t.Fatalf("Initialize() error = %v, want missing BuildCommit", err)
	}
	if f := GetBuildFlags(); f.Name != "wtosc" || f.Version != "unknown" {
		t.Errorf("failed Initialize() changed defaults: %+v", f)
	}
}
