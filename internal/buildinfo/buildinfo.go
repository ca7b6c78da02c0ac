// Package buildinfo provides build version and metadata information.
package buildinfo

import "runtime/debug"

// Version metadata is injected at build time via ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Summary returns a human-readable version summary string. When no version
// was injected, the module version and VCS stamp recorded by the Go
// toolchain are used instead.
func Summary() string {
	version, commit, date := Version, Commit, Date
	if version == "" || version == "dev" {
		if info, ok := readBuildInfo(); ok {
			if v := info.Main.Version; v != "" && v != "(devel)" {
				version = v
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					if commit == "" {
						commit = shortRevision(setting.Value)
					}
				case "vcs.time":
					if date == "" {
						date = setting.Value
					}
				}
			}
		}
	}
	if version == "" {
		version = "dev"
	}

	parts := version
	if commit != "" {
		parts += " (" + commit
		if date != "" {
			parts += " " + date
		}
		parts += ")"
	} else if date != "" {
		parts += " (" + date + ")"
	}
	return parts
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
