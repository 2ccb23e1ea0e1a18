package diag

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// FormatOptions controls textual rendering.
type FormatOptions struct {
	Color bool
	Notes bool
	// MinSeverity hides less severe diagnostics in Render.
	MinSeverity Severity
}

func (l Location) String() string {
	var sb strings.Builder
	sb.WriteString(l.Method)
	if l.Value != "" {
		if sb.Len() > 0 {
			sb.WriteString(":")
		}
		sb.WriteString("%")
		sb.WriteString(l.Value)
	}
	if l.Node != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("[")
		sb.WriteString(l.Node)
		sb.WriteString("]")
	}
	if sb.Len() == 0 {
		return "<module>"
	}
	return sb.String()
}

// FormatDiagnostic renders d on one line, followed by one line per note
// when opts.Notes is set:
//
//	warning QNT3001 forward:%x: observer has no calibration entry
func FormatDiagnostic(d Diagnostic, opts FormatOptions) string {
	var sb strings.Builder
	sev := strings.ToLower(d.Severity.String())
	if opts.Color {
		c := color.New(colorAttrs(d.Severity)...)
		c.EnableColor()
		sev = c.Sprint(sev)
	}
	sb.WriteString(sev)
	sb.WriteString(" ")
	sb.WriteString(d.Code.ID())
	sb.WriteString(" ")
	sb.WriteString(d.Loc.String())
	sb.WriteString(": ")
	sb.WriteString(strings.ReplaceAll(d.Message, "\n", " "))
	if opts.Notes {
		for _, n := range d.Notes {
			sb.WriteString("\n  note: ")
			sb.WriteString(n.Loc.String())
			sb.WriteString(": ")
			sb.WriteString(n.Msg)
		}
	}
	return sb.String()
}

func colorAttrs(sev Severity) []color.Attribute {
	switch sev {
	case SevInfo:
		return []color.Attribute{color.FgCyan}
	case SevWarning:
		return []color.Attribute{color.FgYellow, color.Bold}
	default:
		return []color.Attribute{color.FgRed, color.Bold}
	}
}

// Render writes the diagnostics of bag at or above opts.MinSeverity, one
// per line.
func Render(w io.Writer, bag *Bag, opts FormatOptions) error {
	if w == nil || bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		if d.Severity < opts.MinSeverity {
			continue
		}
		if _, err := io.WriteString(w, FormatDiagnostic(d, opts)+"\n"); err != nil {
			return err
		}
	}
	return nil
}
