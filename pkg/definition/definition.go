package definition

import (
	"sort"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Decision pairs a decision stage with its built logic.
type Decision struct {
	Stage *domain.DecisionStage
	Logic *domain.DecisionLogic
}

// Config carries everything needed to construct a Definition.
type Config struct {
	Name  string
	Start *domain.Stage
	Exit  *domain.BackLink

	// Stages is the registry of stages, keyed by id.
	Stages map[string]*domain.Stage
	// Decisions is the registry of decision stages, keyed by id.
	Decisions map[string]Decision
	// Transitions is the (stage x event) table.
	Transitions *Table
}

// Definition is the immutable, validated graph of one named journey.
// It is safe for concurrent use.
type Definition struct {
	name        string
	start       *domain.Stage
	exit        *domain.BackLink
	stages      map[string]*domain.Stage
	decisions   map[string]Decision
	transitions *Table
}

// New validates cfg and freezes it into a Definition.
// Validation failures are *domain.DefinitionError values combined with multierr.
func New(cfg Config) (*Definition, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	stages := make(map[string]*domain.Stage, len(cfg.Stages))
	for id, s := range cfg.Stages {
		stages[id] = s
	}
	decisions := make(map[string]Decision, len(cfg.Decisions))
	for id, d := range cfg.Decisions {
		decisions[id] = d
	}

	return &Definition{
		name:        cfg.Name,
		start:       cfg.Start,
		exit:        cfg.Exit,
		stages:      stages,
		decisions:   decisions,
		transitions: cfg.Transitions,
	}, nil
}

// Name returns the journey name.
func (d *Definition) Name() string {
	return d.name
}

// StartStage returns the stage every new journey begins at.
func (d *Definition) StartStage() *domain.Stage {
	return d.start
}

// ExitLink returns the link leading out of the journey from its first stage.
func (d *Definition) ExitLink() (*domain.BackLink, bool) {
	return d.exit, d.exit != nil
}

// ResolveStage returns the stage registered under id.
func (d *Definition) ResolveStage(id string) (*domain.Stage, error) {
	s, ok := d.stages[id]
	if !ok {
		return nil, &domain.ResolutionError{
			Stage:  id,
			Reason: "stage is not defined in journey '" + d.name + "'",
		}
	}
	return s, nil
}

// Stages returns the registered stages ordered by name.
func (d *Definition) Stages() []*domain.Stage {
	out := make([]*domain.Stage, 0, len(d.stages))
	for _, s := range d.stages {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DecisionStages returns the registered decision stages ordered by name.
func (d *Definition) DecisionStages() []*domain.DecisionStage {
	out := make([]*domain.DecisionStage, 0, len(d.decisions))
	for _, dec := range d.decisions {
		out = append(out, dec.Stage)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
