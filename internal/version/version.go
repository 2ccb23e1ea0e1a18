// Package version holds build metadata for the qgraph CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var partColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Producer is the string written into the producer field of saved files.
func Producer() string {
	return "qgraph " + Version
}

// Colored renders Version with major, minor and patch in distinct colours.
// The pre-release suffix is left plain.
func Colored(enabled bool) string {
	core, suffix, found := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteByte('.')
		}
		if !enabled || i >= len(partColors) {
			sb.WriteString(p)
			continue
		}
		c := *partColors[i]
		c.EnableColor()
		sb.WriteString(c.Sprint(p))
	}
	if found {
		sb.WriteString("-" + suffix)
	}
	return sb.String()
}

// Long renders the version with optional commit and build date.
func Long(colored bool) string {
	out := "qgraph " + Colored(colored)
	if GitCommit != "" {
		out += " (" + GitCommit + ")"
	}
	if BuildDate != "" {
		out += " built " + BuildDate
	}
	return out
}
