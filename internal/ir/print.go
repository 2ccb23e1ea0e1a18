package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Dump writes a human-readable representation of g.
func Dump(w io.Writer, g *Graph) error {
	if w == nil || g == nil {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("graph(")
	sb.WriteString(formatParams(g.root.inputs))
	sb.WriteString("):\n")
	dumpNodes(&sb, g.root, 1)
	fmt.Fprintf(&sb, "  return (%s)\n", formatRefs(g.root.outputs))
	_, err := io.WriteString(w, sb.String())
	return err
}

// DumpModule writes every method of m in order.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	for i, meth := range m.Methods {
		if meth == nil {
			continue
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "method %s (params=%d):\n", meth.Name, meth.ParamCount); err != nil {
			return err
		}
		if err := Dump(w, meth.Graph); err != nil {
			return err
		}
	}
	return nil
}

func dumpNodes(sb *strings.Builder, b *Block, depth int) {
	indent := strings.Repeat("  ", depth)

	// Align '=' across the block by display width.
	width := 0
	for n := b.head; n != nil; n = n.next {
		if len(n.outputs) > 0 {
			width = max(width, runewidth.StringWidth(formatParams(n.outputs)))
		}
	}

	for n := b.head; n != nil; n = n.next {
		sb.WriteString(indent)
		if len(n.outputs) > 0 {
			sb.WriteString(runewidth.FillRight(formatParams(n.outputs), width))
			sb.WriteString(" = ")
		}
		sb.WriteString(formatCall(n))
		if n.scope != "" {
			sb.WriteString("  # ")
			sb.WriteString(n.scope)
		}
		sb.WriteString("\n")
		for i, sub := range n.blocks {
			fmt.Fprintf(sb, "%s  block%d(%s):\n", indent, i, formatParams(sub.inputs))
			dumpNodes(sb, sub, depth+2)
			fmt.Fprintf(sb, "%s    -> (%s)\n", indent, formatRefs(sub.outputs))
		}
	}
}

// FormatNode returns the one-line form of n without nested blocks.
func FormatNode(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if len(n.outputs) == 0 {
		return formatCall(n)
	}
	return formatParams(n.outputs) + " = " + formatCall(n)
}

func formatCall(n *Node) string {
	var sb strings.Builder
	sb.WriteString(string(n.kind))
	if len(n.attrs) > 0 {
		sb.WriteString("[")
		for i, name := range n.AttrNames() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(name)
			sb.WriteString("=")
			sb.WriteString(n.attrs[name].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("(")
	sb.WriteString(formatRefs(n.inputs))
	sb.WriteString(")")
	return sb.String()
}

func formatParams(vals []*Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = "%" + v.Name() + " : " + v.typ.String()
	}
	return strings.Join(parts, ", ")
}

func formatRefs(vals []*Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if v == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = "%" + v.Name()
	}
	return strings.Join(parts, ", ")
}
