package dsl

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
	"go.uber.org/multierr"
)

// Builder accumulates stages, decisions and transitions shared by one or
// more journeys. It is not safe for concurrent use; build once at startup.
type Builder struct {
	stages    map[string]*domain.Stage
	decisions map[string]*decisionEntry
	names     map[string]string // id -> name, for stages and decisions alike
	entries   []*eventEntry
	defined   map[string]map[string]bool
	journeys  []journeyDecl
	errs      error
}

type journeyDecl struct {
	name  string
	start *domain.Stage
	exit  *domain.BackLink
}

// JourneyOption customises a journey declaration.
type JourneyOption func(*journeyDecl)

// WithExitLink sets the link offered instead of a back link on the first
// stage of the journey.
func WithExitLink(url, prompt string) JourneyOption {
	return func(d *journeyDecl) {
		d.exit = domain.ExitLink(url, prompt)
	}
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{
		stages:    make(map[string]*domain.Stage),
		decisions: make(map[string]*decisionEntry),
		names:     make(map[string]string),
		defined:   make(map[string]map[string]bool),
	}
}

func (b *Builder) fail(format string, args ...any) {
	b.errs = multierr.Append(b.errs, domain.Definitionf(format, args...))
}

// register claims the id of name. Two names hashing to the same id are
// reported, as are duplicate names.
func (b *Builder) register(name string) bool {
	if name == "" {
		b.fail("stage name cannot be empty")
		return false
	}
	id := domain.StageID(name)
	if existing, ok := b.names[id]; ok {
		if existing == name {
			b.fail("stage '%s' is already defined", name)
		} else {
			b.fail("stage '%s' has the same id as '%s'", name, existing)
		}
		return false
	}
	b.names[id] = name
	return true
}

// DefineStage registers a stage rendered by the application.
func (b *Builder) DefineStage(name, displayName string, render domain.RenderFunc) *domain.Stage {
	s := domain.NewRenderedStage(name, displayName, render)
	if b.register(name) {
		b.stages[s.ID] = s
	}
	return s
}

// DefineCallableStage registers a stage reached by redirecting to entryURL.
func (b *Builder) DefineCallableStage(name, displayName, entryURL string) *domain.Stage {
	s := domain.NewCallableStage(name, displayName, entryURL)
	if entryURL == "" {
		b.fail("callable %s needs an entry URL", s)
	}
	if b.register(name) {
		b.stages[s.ID] = s
	}
	return s
}

// DefineJourney declares a named journey starting at start.
func (b *Builder) DefineJourney(name string, start *domain.Stage, opts ...JourneyOption) {
	decl := journeyDecl{name: name, start: start}
	for _, opt := range opts {
		opt(&decl)
	}
	b.journeys = append(b.journeys, decl)
}

// AtStage starts a transition declaration from stage.
func (b *Builder) AtStage(stage *domain.Stage) *StageBuilder {
	return &StageBuilder{b: b, stage: stage}
}

// BuildAll validates the accumulated configuration and returns one
// definition per declared journey. Every problem found is reported.
func (b *Builder) BuildAll() ([]*definition.Definition, error) {
	errs := b.errs
	if len(b.journeys) == 0 {
		errs = multierr.Append(errs, domain.Definitionf("no journeys defined"))
	}

	table := definition.NewTable()
	for _, e := range b.entries {
		if e.action == nil {
			errs = multierr.Append(errs, domain.Definitionf("no transition action was defined for %s, %s", e.stage, e.event))
			continue
		}
		action, err := e.action.build()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s, %s: %w", e.stage, e.event, err))
			continue
		}
		table.Put(e.stage, e.event.Mnemonic(), action)
	}

	decisions := make(map[string]definition.Decision, len(b.decisions))
	for id, d := range b.decisions {
		logic, err := d.build()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", d.stage, err))
			continue
		}
		decisions[id] = definition.Decision{Stage: d.stage, Logic: logic}
	}

	if errs != nil {
		return nil, errs
	}

	defs := make([]*definition.Definition, 0, len(b.journeys))
	seen := make(map[string]bool, len(b.journeys))
	for _, j := range b.journeys {
		if seen[j.name] {
			errs = multierr.Append(errs, domain.Definitionf("journey '%s' is already defined", j.name))
			continue
		}
		seen[j.name] = true

		def, err := definition.New(definition.Config{
			Name:        j.name,
			Start:       j.start,
			Exit:        j.exit,
			Stages:      b.stages,
			Decisions:   decisions,
			Transitions: table,
		})
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		defs = append(defs, def)
	}

	if errs != nil {
		return nil, errs
	}
	return defs, nil
}

// MustBuildAll is like BuildAll but panics on configuration errors.
func (b *Builder) MustBuildAll() []*definition.Definition {
	defs, err := b.BuildAll()
	if err != nil {
		panic(err)
	}
	return defs
}
