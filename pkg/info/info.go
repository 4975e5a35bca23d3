// Package info holds build information injected with -ldflags.
package info

import (
	"runtime"
)

var (
	Version   = "dev"
	BuildDate string
)

type Build struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	BuildDate string `json:"buildDate,omitempty"`
}

// VersionInfo describes the running binary.
func VersionInfo() Build {
	return Build{
		Version:   Version,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}
