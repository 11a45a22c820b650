package domain

import (
	"errors"
	"fmt"
)

// Direction tells the manager how a move changes the journey history.
type Direction int

const (
	// Forward pushes the target onto the history.
	Forward Direction = iota
	// Backward truncates the history back to the target.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// TransitionAction is the resolved effect of firing an event at a stage.
// The set of implementations is closed: Move and Branch.
type TransitionAction interface {
	isTransitionAction()
}

// Move unconditionally leads to Target.
type Move struct {
	Target    Destination
	Direction Direction
}

// Branch resolves an argument, stringifies it and selects the action
// registered for that value. Exactly one of Supplier and Converter is set:
// Supplier for simple events, Converter for parameterised ones.
type Branch struct {
	Supplier   func() any
	Converter  func(any) (any, error)
	Conditions map[string]TransitionAction
	Otherwise  TransitionAction
}

func (Move) isTransitionAction()    {}
func (*Branch) isTransitionAction() {}

// NewMove creates a move towards target, unwrapping typed handles.
func NewMove(target Destination, dir Direction) Move {
	return Move{Target: Unwrap(target), Direction: dir}
}

var (
	errNilArgument   = errors.New("transition argument cannot be nil")
	errEmptyArgument = errors.New("transition argument has an empty string form")
)

// ConditionKey returns the lookup key of a branch value.
func ConditionKey(v any) (string, error) {
	if v == nil {
		return "", errNilArgument
	}
	key := fmt.Sprint(v)
	if key == "" {
		return "", errEmptyArgument
	}
	return key, nil
}

// Match selects the action registered for arg in conditions, falling back to
// otherwise. The returned key is the stringified argument.
func Match(conditions map[string]TransitionAction, otherwise TransitionAction, arg any) (TransitionAction, string, error) {
	key, err := ConditionKey(arg)
	if err != nil {
		return nil, "", err
	}
	if action, ok := conditions[key]; ok {
		return action, key, nil
	}
	if otherwise != nil {
		return otherwise, key, nil
	}
	return nil, key, fmt.Errorf("no condition matched value '%s'", key)
}
