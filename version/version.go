// Package version exposes build identity, resolved from module build info
// when not overridden at link time.
package version

import "runtime/debug"

//nolint:gochecknoglobals // set via -ldflags at release time
var (
	name    = "auprober"
	version = ""
	commit  = ""
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the release version, falling back to the module version
// recorded in build info.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(devel)"
}

// Commit returns the VCS revision, falling back to build info.
func Commit() string {
	if commit != "" {
		return commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
