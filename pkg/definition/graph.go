package definition

import (
	"github.com/aretw0/waypoint/pkg/domain"
)

// Edge is one possible transition of the graph, used for visualisation and
// for asserting the shape of a journey in tests.
type Edge struct {
	From      domain.Destination
	To        domain.Destination
	Event     string
	Condition string
	Direction domain.Direction
}

// Conditional reports whether the edge depends on a branch or decision value.
func (e Edge) Conditional() bool {
	return e.Condition != ""
}

// Edges flattens the transition table and decision logic into edges.
// Stages are visited by name, events by mnemonic, so the output is stable.
func (d *Definition) Edges() []Edge {
	var edges []Edge

	for _, stage := range d.transitions.Stages() {
		for _, event := range d.transitions.Events(stage.ID) {
			action, _ := d.transitions.Get(stage.ID, event)
			edges = appendEdges(edges, stage, event, "", action)
		}
	}

	for _, ds := range d.DecisionStages() {
		logic := d.decisions[ds.ID].Logic
		for _, key := range sortedKeys(logic.Conditions) {
			edges = appendEdges(edges, ds, "", key, logic.Conditions[key])
		}
		if logic.Otherwise != nil {
			edges = appendEdges(edges, ds, "", "otherwise", logic.Otherwise)
		}
	}

	return edges
}

func appendEdges(edges []Edge, from domain.Destination, event, condition string, action domain.TransitionAction) []Edge {
	switch a := action.(type) {
	case domain.Move:
		return append(edges, Edge{
			From:      from,
			To:        domain.Unwrap(a.Target),
			Event:     event,
			Condition: condition,
			Direction: a.Direction,
		})
	case *domain.Branch:
		for _, key := range sortedKeys(a.Conditions) {
			edges = appendEdges(edges, from, event, joinCondition(condition, key), a.Conditions[key])
		}
		if a.Otherwise != nil {
			edges = appendEdges(edges, from, event, joinCondition(condition, "otherwise"), a.Otherwise)
		}
	}
	return edges
}

func joinCondition(outer, inner string) string {
	if outer == "" {
		return inner
	}
	return outer + "/" + inner
}
