package definition

import (
	"sort"

	"github.com/aretw0/waypoint/pkg/domain"
)

type row struct {
	stage   *domain.Stage
	actions map[string]domain.TransitionAction
}

// Table is the sparse (stage x event) -> action map, keyed by stage id and
// event mnemonic rather than by object identity.
type Table struct {
	rows map[string]*row
}

// NewTable creates an empty transition table.
func NewTable() *Table {
	return &Table{rows: make(map[string]*row)}
}

// Put stores the action for (stage, event). It returns false, leaving the
// table untouched, if the pair is already defined.
func (t *Table) Put(stage *domain.Stage, event string, action domain.TransitionAction) bool {
	r, ok := t.rows[stage.ID]
	if !ok {
		r = &row{stage: stage, actions: make(map[string]domain.TransitionAction)}
		t.rows[stage.ID] = r
	}
	if _, exists := r.actions[event]; exists {
		return false
	}
	r.actions[event] = action
	return true
}

// Get returns the action registered for (stageID, event).
func (t *Table) Get(stageID, event string) (domain.TransitionAction, bool) {
	r, ok := t.rows[stageID]
	if !ok {
		return nil, false
	}
	action, ok := r.actions[event]
	return action, ok
}

// Stages returns the row keys ordered by name.
func (t *Table) Stages() []*domain.Stage {
	stages := make([]*domain.Stage, 0, len(t.rows))
	for _, r := range t.rows {
		stages = append(stages, r.stage)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].Name < stages[j].Name })
	return stages
}

// Events returns the mnemonics defined for stageID, sorted.
func (t *Table) Events(stageID string) []string {
	r, ok := t.rows[stageID]
	if !ok {
		return nil
	}
	events := make([]string, 0, len(r.actions))
	for e := range r.actions {
		events = append(events, e)
	}
	sort.Strings(events)
	return events
}

// Len returns the number of (stage, event) entries.
func (t *Table) Len() int {
	n := 0
	for _, r := range t.rows {
		n += len(r.actions)
	}
	return n
}
