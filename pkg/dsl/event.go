package dsl

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

type eventEntry struct {
	stage  *domain.Stage
	event  domain.EventKey
	action ActionBuilder
}

// StageBuilder declares the transitions leaving one stage.
type StageBuilder struct {
	b     *Builder
	stage *domain.Stage
}

func (sb *StageBuilder) entry(event domain.EventKey) *eventEntry {
	e := &eventEntry{stage: sb.stage, event: event}
	if sb.stage == nil {
		sb.b.fail("transition for %s declared without a stage", event)
		return e
	}

	events, ok := sb.b.defined[sb.stage.ID]
	if !ok {
		events = make(map[string]bool)
		sb.b.defined[sb.stage.ID] = events
	}
	if events[event.Mnemonic()] {
		sb.b.fail("transition for %s, %s has already been defined", sb.stage, event)
		return e
	}
	events[event.Mnemonic()] = true
	sb.b.entries = append(sb.b.entries, e)
	return e
}

// OnEvent declares the transition taken when event is fired at the stage.
func (sb *StageBuilder) OnEvent(event domain.Event) *EventBuilder {
	return &EventBuilder{b: sb.b, entry: sb.entry(event)}
}

// OnParamEvent declares the transition taken when the parameterised event
// is fired at the stage built by sb.
func OnParamEvent[T domain.EventArg](sb *StageBuilder, event domain.ParamEvent[T]) *ParamEventBuilder[T] {
	return &ParamEventBuilder[T]{b: sb.b, entry: sb.entry(event)}
}

func setAction(b *Builder, e *eventEntry, a ActionBuilder) {
	if e.action != nil {
		b.fail("transition action for %s, %s is already set", e.stage, e.event)
		return
	}
	e.action = a
}

// EventBuilder completes a simple event transition.
type EventBuilder struct {
	b     *Builder
	entry *eventEntry
}

// Then sets the action taken unconditionally.
func (eb *EventBuilder) Then(a ActionBuilder) {
	setAction(eb.b, eb.entry, a)
}

// BranchOn selects the action by the value supplier returns when the event
// is fired.
func BranchOn[U any](eb *EventBuilder, supplier func() U) *BranchBuilder[U] {
	bb := newBranch[U](eb.b, fmt.Sprintf("%s, %s", eb.entry.stage, eb.entry.event))
	bb.core.supplier = func() any { return supplier() }
	setAction(eb.b, eb.entry, bb)
	return bb
}

// ParamEventBuilder completes a parameterised event transition.
type ParamEventBuilder[T domain.EventArg] struct {
	b     *Builder
	entry *eventEntry
}

// Then sets the action taken whatever the argument is.
func (pb *ParamEventBuilder[T]) Then(a ActionBuilder) {
	setAction(pb.b, pb.entry, a)
}

// Branch selects the action by the event argument itself.
func (pb *ParamEventBuilder[T]) Branch() *BranchBuilder[T] {
	return BranchWith(pb, func(v T) T { return v })
}

// BranchWith selects the action by the event argument after conversion.
func BranchWith[T domain.EventArg, U any](pb *ParamEventBuilder[T], convert func(T) U) *BranchBuilder[U] {
	bb := newBranch[U](pb.b, fmt.Sprintf("%s, %s", pb.entry.stage, pb.entry.event))
	bb.core.converter = func(arg any) (any, error) {
		v, ok := arg.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("argument %v is %T, want %T: %w", arg, arg, zero, domain.ErrArgumentMismatch)
		}
		return convert(v), nil
	}
	setAction(pb.b, pb.entry, bb)
	return bb
}
