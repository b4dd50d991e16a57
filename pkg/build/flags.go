// SPDX-License-Identifier: MIT
//
// Package build carries metadata embedded at link time, for example:
//
//	go build -ldflags "-X wtosc/pkg/build.buildName=wtosc -X wtosc/pkg/build.buildVersion=0.1.0 ..."
//
// Builds without ldflags report "unknown" for every field except the
// description.
package build

import "fmt"

const description = "Real-time wavetable oscillator"

type ldFlags struct {
	Name        string
	Time        string
	Commit      string
	Version     string
	Description string
}

// String formats the flags for version output.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "wtosc",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "unknown",
		Description: description,
	}
)

// Initialize validates and copies build information from ldflags variables
// into the buildFlags struct. On error the development defaults stay in
// place, so callers may log it and continue.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
