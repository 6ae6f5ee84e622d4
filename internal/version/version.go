// Package version provides version management for archagent, including the
// host-compatibility gate checked at plugin startup.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of the plugin.
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built.
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// MinHostVersion is the oldest host API version the plugin supports. Older
// hosts lack the external-event semantics the bridge depends on.
const MinHostVersion = "2.0.0"

// Info represents version information for display.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String formats the version information on one line.
func (i Info) String() string {
	return fmt.Sprintf("archagent v%s (%s, built %s, %s, %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// CheckHostCompatibility verifies the host API version against MinHostVersion.
func CheckHostCompatibility(hostVersion string) error {
	host, err := semver.NewVersion(hostVersion)
	if err != nil {
		return fmt.Errorf("unparseable host version %q: %w", hostVersion, err)
	}
	minimum := semver.MustParse(MinHostVersion)
	if host.LessThan(minimum) {
		return fmt.Errorf("host version %s is older than the minimum supported %s", hostVersion, MinHostVersion)
	}
	return nil
}
