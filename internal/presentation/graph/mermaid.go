// Package graph draws the ordering flow as a Mermaid diagram.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/barista/pkg/domain"
)

// Overlay highlights where a session is and where it has been.
type Overlay struct {
	Visited []domain.Step
	Current domain.Step
}

// GenerateMermaid produces a Mermaid flowchart of the given transitions.
// Welcome is drawn as a circle and steps that wait for typed input as
// parallelograms. Guarded edges carry the guard as their label.
func GenerateMermaid(flow []domain.Transition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := map[domain.Step]bool{}
	declare := func(s domain.Step) {
		if seen[s] {
			return
		}
		seen[s] = true
		opener, closer := "[", "]"
		switch s {
		case domain.StepWelcome:
			opener, closer = "((", "))"
		case domain.StepNameEntry, domain.StepQuantityPicker:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", s, opener, s, closer)
	}

	for _, t := range flow {
		declare(t.From)
		declare(t.To)

		label := string(t.Action)
		if t.Guard != "" {
			label += " [" + t.Guard + "]"
		}
		// Mermaid has no escape for double quotes inside labels.
		label = strings.ReplaceAll(label, "\"", "'")

		arrow := "-->"
		if t.To == domain.StepWelcome {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s|\"%s\"| %s\n", t.From, arrow, label, t.To)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := map[domain.Step]bool{}
		for _, s := range overlay.Visited {
			if s == overlay.Current || styled[s] || !seen[s] {
				continue
			}
			styled[s] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", s)
		}
		if overlay.Current != "" && seen[overlay.Current] {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}
