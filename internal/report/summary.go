package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/specialistvlad/shipwright/internal/node"
)

// Printer writes the terminal summary.
type Printer struct {
	// Plain disables colour codes.
	Plain bool
}

func (p Printer) paint(c color.Color, s string) string {
	if p.Plain {
		return s
	}
	return c.Sprint(s)
}

// Keyed by node.State.String(), the form Build stores in Target.State.
var stateIcons = map[string]string{
	node.Succeeded.String(): "✅",
	node.Failed.String():    "❌",
	node.Skipped.String():   "⏭️",
	node.Pending.String():   "…",
	node.Running.String():   "▶️",
}

var stateColors = map[string]color.Color{
	node.Succeeded.String(): color.FgGreen,
	node.Failed.String():    color.FgRed,
	node.Skipped.String():   color.FgYellow,
}

// Print renders one line per target followed by the overall outcome. Failed
// runs name the first failing target and every skipped target.
func (p Printer) Print(w io.Writer, doc Document) {
	width := len("Target")
	for _, t := range doc.Targets {
		width = max(width, len(t.Name))
	}

	fmt.Fprintf(w, "\n%s\n", p.paint(color.Bold, fmt.Sprintf("%-*s  %-10s  %s", width, "Target", "Status", "Duration")))
	fmt.Fprintln(w, strings.Repeat("─", width+24))
	for _, t := range doc.Targets {
		status := fmt.Sprintf("%-10s", t.State)
		if c, ok := stateColors[t.State]; ok {
			status = p.paint(c, status)
		}
		line := fmt.Sprintf("%-*s  %s  %s", width, t.Name, status, t.Elapsed)
		if t.SkipReason != "" {
			line += "(" + t.SkipReason
			if t.Detail != "" {
				line += ": " + t.Detail
			}
			line += ")"
		}
		fmt.Fprintf(w, "%s %s\n", stateIcons[t.State], strings.TrimRight(line, " "))
	}
	fmt.Fprintln(w, strings.Repeat("─", width+24))

	for _, warning := range doc.Warnings {
		fmt.Fprintf(w, "%s %s\n", p.paint(color.FgYellow, "warning:"), warning)
	}
	if doc.Package != nil {
		fmt.Fprintf(w, "📦 %s\n", doc.Package)
	}
	if doc.Status == StatusFailed {
		fmt.Fprintf(w, "%s %s\n", p.paint(color.FgRed, "❌ Build failed:"), doc.RootCause)
		var skipped []string
		for _, t := range doc.Targets {
			if t.State == node.Skipped.String() {
				skipped = append(skipped, t.Name)
			}
		}
		if len(skipped) > 0 {
			fmt.Fprintf(w, "Skipped: %s\n", strings.Join(skipped, ", "))
		}
		return
	}
	fmt.Fprintf(w, "%s in %s\n", p.paint(color.FgGreen, "🏁 Build succeeded"), doc.Elapsed)
}
