// Package version provides build and version information for amanignore.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name is the program name used in version output.
const Name = "amanignore"

// Build information, overridden with -ldflags at build time:
//
//	-X github.com/Aman-CERP/amanignore/pkg/version.Version=1.2.3
//	-X github.com/Aman-CERP/amanignore/pkg/version.Commit=abc1234
//	-X github.com/Aman-CERP/amanignore/pkg/version.Date=2026-01-02T15:04:05Z
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String returns a one-line version string with all build info.
func String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Name, Version, Commit, Date, runtime.Version())
}

// Short returns just the version string.
func Short() string {
	return Version
}

// IsDev reports whether this is a build without injected version info.
func IsDev() bool {
	return Version == "dev"
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Verbose returns a multi-line description for `amanignore version --verbose`.
func Verbose() string {
	info := GetInfo()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s version %s\n", Name, info.Version)
	fmt.Fprintf(&sb, "  git commit: %s\n", info.Commit)
	fmt.Fprintf(&sb, "  build time: %s\n", info.Date)
	fmt.Fprintf(&sb, "  go version: %s\n", info.GoVersion)
	fmt.Fprintf(&sb, "  platform:   %s/%s\n", info.OS, info.Arch)
	return sb.String()
}
