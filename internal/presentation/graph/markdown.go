package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
)

// GenerateMarkdown describes a journey definition as a markdown document:
// its stages, decision stages and every transition.
func GenerateMarkdown(def *definition.Definition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Journey `%s`\n\n", def.Name())
	fmt.Fprintf(&sb, "Starts at **%s**.", def.StartStage().DisplayName)
	if exit, ok := def.ExitLink(); ok {
		fmt.Fprintf(&sb, " Exits to [%s](%s).", exit.Prompt, exit.URL)
	}
	sb.WriteString("\n\n## Stages\n\n")
	sb.WriteString("| Stage | Id | Kind | Title |\n|---|---|---|---|\n")
	for _, s := range def.Stages() {
		kind := "rendered"
		if s.IsCallable() {
			kind = "callable `" + s.EntryURL + "`"
		}
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s |\n", s.Name, s.ID, kind, cell(s.DisplayName))
	}

	if decisions := def.DecisionStages(); len(decisions) > 0 {
		sb.WriteString("\n## Decisions\n\n")
		for _, d := range decisions {
			fmt.Fprintf(&sb, "- %s (`%s`)\n", d.Name, d.ID)
		}
	}

	sb.WriteString("\n## Transitions\n\n")
	sb.WriteString("| From | Event | Condition | To |\n|---|---|---|---|\n")
	for _, e := range def.Edges() {
		to := destinationName(e.To)
		if e.Direction == domain.Backward {
			to = "back to " + to
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", destinationName(e.From), cell(e.Event), cell(e.Condition), to)
	}
	return sb.String()
}

func destinationName(d domain.Destination) string {
	switch d := d.(type) {
	case *domain.Stage:
		return d.Name
	case *domain.DecisionStage:
		return d.Name + " (decision)"
	default:
		return "?"
	}
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
