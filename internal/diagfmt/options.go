package diagfmt

import (
	"fmt"
	"strings"

	"qgraph/internal/diag"
)

// Format selects how diagnostics are written.
type Format uint8

const (
	// FormatPretty is the one-line-per-diagnostic text form.
	FormatPretty Format = iota
	FormatJSON
	FormatSARIF
)

func (f Format) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	case FormatSARIF:
		return "sarif"
	}
	return "unknown"
}

// ParseFormat accepts pretty, json and sarif.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	}
	return 0, fmt.Errorf("unknown diagnostics format %q (expected pretty|json|sarif)", s)
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
	MinSeverity  diag.Severity
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	RunID          string
	InvocationArgs []string
	MinSeverity    diag.Severity
}
