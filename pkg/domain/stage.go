package domain

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// StageKind defines how a stage is entered by the host.
type StageKind string

const (
	// StageCallable stages live at a fixed URL; the host redirects to them.
	StageCallable StageKind = "callable"
	// StageRendered stages produce a response through their render function.
	StageRendered StageKind = "rendered"
)

// RenderFunc produces the response for a rendered stage.
// The returned value is opaque to the engine.
type RenderFunc func(ctx context.Context) (any, error)

// StageID derives the stable short identifier of a declared stage name.
// The id only depends on the name, so it survives process restarts.
func StageID(name string) string {
	return fmt.Sprintf("%08x", uint32(xxhash.Sum64String(name)))
}

// Destination is a node a transition can lead to: either a Stage the user
// lands on, or a DecisionStage that is resolved on the way.
type Destination interface {
	destination() Destination
	// StageID returns the identifier of the node.
	StageID() string
	// StageName returns the declared name of the node.
	StageName() string
}

// Unwrap returns the concrete node behind d (*Stage or *DecisionStage).
// Handles that embed a stage resolve to the embedded value. Nil pointers,
// typed or not, unwrap to nil.
func Unwrap(d Destination) Destination {
	if isNilNode(d) {
		return nil
	}
	n := d.destination()
	if isNilNode(n) {
		return nil
	}
	return n
}

func isNilNode(d Destination) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Stage is a node of the journey graph the user can navigate to.
type Stage struct {
	ID          string
	Name        string
	DisplayName string
	Kind        StageKind

	// EntryURL is the address of a callable stage.
	EntryURL string
	// Render produces the response of a rendered stage.
	Render RenderFunc
}

// NewRenderedStage creates a stage that renders through fn.
func NewRenderedStage(name, displayName string, fn RenderFunc) *Stage {
	return &Stage{
		ID:          StageID(name),
		Name:        name,
		DisplayName: displayName,
		Kind:        StageRendered,
		Render:      fn,
	}
}

// NewCallableStage creates a stage entered by redirecting to entryURL.
func NewCallableStage(name, displayName, entryURL string) *Stage {
	return &Stage{
		ID:          StageID(name),
		Name:        name,
		DisplayName: displayName,
		Kind:        StageCallable,
		EntryURL:    entryURL,
	}
}

func (s *Stage) destination() Destination { return s }

// StageID implements Destination.
func (s *Stage) StageID() string { return s.ID }

// StageName implements Destination.
func (s *Stage) StageName() string { return s.Name }

// IsCallable reports whether the stage is entered through its URL.
func (s *Stage) IsCallable() bool { return s.Kind == StageCallable }

// IsRendered reports whether the stage renders directly.
func (s *Stage) IsRendered() bool { return s.Kind == StageRendered }

func (s *Stage) String() string {
	return fmt.Sprintf("stage '%s'", s.Name)
}

// DecisionStage is a transient node. It is never shown to the user; its
// logic is evaluated while an event is being resolved.
type DecisionStage struct {
	ID   string
	Name string
}

// NewDecisionStage creates a decision node named name.
func NewDecisionStage(name string) *DecisionStage {
	return &DecisionStage{ID: StageID(name), Name: name}
}

func (d *DecisionStage) destination() Destination { return d }

// StageID implements Destination.
func (d *DecisionStage) StageID() string { return d.ID }

// StageName implements Destination.
func (d *DecisionStage) StageName() string { return d.Name }

func (d *DecisionStage) String() string {
	return fmt.Sprintf("decision '%s'", d.Name)
}
