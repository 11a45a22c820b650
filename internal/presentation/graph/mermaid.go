package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
)

// GraphOverlay contains journey state to visualize on the graph.
type GraphOverlay struct {
	VisitedStages []string // stage ids
	CurrentStage  string   // stage id
}

// OverlayFor highlights the history of journey.
func OverlayFor(journey *domain.Journey) *GraphOverlay {
	if journey == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedStages: journey.History,
		CurrentStage:  journey.CurrentStageID(),
	}
}

// GenerateMermaid produces a Mermaid flowchart of a journey definition.
// It applies semantic styling:
// - Start stage: ((Circle))
// - Callable stage: [[Subroutine]]
// - Decision: {Rhombus}
// - Rendered stage: [Rectangle]
// Backward moves are dotted. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(def *definition.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	start := def.StartStage()
	for _, stage := range def.Stages() {
		opener, closer := "[", "]"
		switch {
		case stage.ID == start.ID:
			opener, closer = "((", "))"
		case stage.IsCallable():
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", mermaidID(stage.ID), opener, escape(stage.DisplayName), closer))
	}
	for _, ds := range def.DecisionStages() {
		sb.WriteString(fmt.Sprintf("    %s{\"%s\"}\n", mermaidID(ds.ID), escape(ds.Name)))
	}

	for _, e := range def.Edges() {
		label := e.Event
		if e.Conditional() {
			if label != "" {
				label += ": "
			}
			label += e.Condition
		}

		var arrow string
		switch {
		case e.Direction == domain.Backward && label != "":
			arrow = fmt.Sprintf("-. \"%s\" .->", escape(label))
		case e.Direction == domain.Backward:
			arrow = "-.->"
		case label != "":
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(label))
		default:
			arrow = "-->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", mermaidID(e.From.StageID()), arrow, mermaidID(e.To.StageID())))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, id := range overlay.VisitedStages {
			if id == "" || visited[id] {
				continue
			}
			visited[id] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", mermaidID(id)))
		}

		if overlay.CurrentStage != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", mermaidID(overlay.CurrentStage)))
		}
	}

	return sb.String()
}

// mermaidID prefixes stage ids, which may start with a digit.
func mermaidID(id string) string {
	return "s_" + id
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
