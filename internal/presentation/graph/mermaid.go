package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/ports"
)

// RouteOverlay highlights how one task travelled through the chain.
type RouteOverlay struct {
	// Checked is how many handlers were asked before the decision.
	Checked int
	// Selected is the index of the accepting handler, or -1 when unroutable.
	Selected int
}

type keyworded interface {
	Keywords() []string
}

// GenerateMermaid draws the routing chain as a Mermaid flowchart: one
// decision per handler in registration order, ending in the unroutable node.
// Shapes:
// - Task: ((Circle))
// - Capability check: {Rhombus}
// - Handler: [[Subroutine]]
// - Unroutable: [/Parallelogram/]
func GenerateMermaid(handlers []ports.Handler, overlay *RouteOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    task((\"task\"))\n")

	prev := "task"
	for i, h := range handlers {
		check := fmt.Sprintf("check%d", i)
		node := fmt.Sprintf("h%d", i)

		label := escape(h.Name()) + "?"
		if k, ok := h.(keyworded); ok && len(k.Keywords()) > 0 {
			label = fmt.Sprintf("%s <br/> %s", label, escape(strings.Join(k.Keywords(), ", ")))
		}

		if prev == "task" {
			sb.WriteString(fmt.Sprintf("    task --> %s{\"%s\"}\n", check, label))
		} else {
			sb.WriteString(fmt.Sprintf("    %s -- no --> %s{\"%s\"}\n", prev, check, label))
		}
		sb.WriteString(fmt.Sprintf("    %s -- yes --> %s[[\"%s\"]]\n", check, node, escape(h.Name())))
		prev = check
	}

	unroutable := "unroutable[/\"No suitable agent/handler\"/]"
	if prev == "task" {
		sb.WriteString("    task --> " + unroutable + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("    %s -- no --> %s\n", prev, unroutable))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for i := 0; i < overlay.Checked && i < len(handlers); i++ {
			sb.WriteString(fmt.Sprintf("    class check%d visited;\n", i))
		}
		if overlay.Selected >= 0 && overlay.Selected < len(handlers) {
			sb.WriteString(fmt.Sprintf("    class h%d current;\n", overlay.Selected))
		} else {
			sb.WriteString("    class unroutable current;\n")
		}
	}

	return sb.String()
}

// Trace computes the overlay for task without running any handler.
func Trace(handlers []ports.Handler, task string) *RouteOverlay {
	for i, h := range handlers {
		if h.CanHandle(task) {
			return &RouteOverlay{Checked: i + 1, Selected: i}
		}
	}
	return &RouteOverlay{Checked: len(handlers), Selected: -1}
}

// escape keeps labels inside Mermaid double quotes.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
