package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap the first three so callers can
// branch with errors.Is without caring about the details.
var (
	// ErrDefinition marks a build-time configuration defect.
	ErrDefinition = errors.New("journey definition error")

	// ErrResolution marks a failure to resolve a transition at request time.
	ErrResolution = errors.New("journey resolution error")

	// ErrFormat marks a malformed or stale journey token.
	ErrFormat = errors.New("invalid journey token")

	// ErrCannotGoBack is returned when back navigation is requested at the first stage.
	ErrCannotGoBack = errors.New("cannot go back any further")

	// ErrNoJourney is returned when an operation requires a journey token but none was supplied.
	ErrNoJourney = errors.New("no journey in progress")

	// ErrUnknownJourney is returned when a journey name has no definition.
	ErrUnknownJourney = errors.New("unknown journey")

	// ErrArgumentMismatch is returned when the event argument does not fit the branch declared for it.
	ErrArgumentMismatch = errors.New("event argument does not match branch")

	// ErrJourneyNotFound is returned by stores when no journey is persisted under a key.
	ErrJourneyNotFound = errors.New("journey not found")
)

// DefinitionError reports an invalid journey graph declaration.
type DefinitionError struct {
	Reason string
}

// Definitionf builds a DefinitionError from a format string.
func Definitionf(format string, args ...any) *DefinitionError {
	return &DefinitionError{Reason: fmt.Sprintf(format, args...)}
}

func (e *DefinitionError) Error() string {
	return "journey definition: " + e.Reason
}

func (e *DefinitionError) Unwrap() error {
	return ErrDefinition
}

// ResolutionError reports a transition that could not be resolved.
// Stage and Event identify where resolution failed, for diagnostics.
type ResolutionError struct {
	Stage  string
	Event  string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	stage, event := e.Stage, e.Event
	if stage == "" {
		stage = "unknown stage"
	}
	if event == "" {
		event = "unknown event"
	}
	msg := fmt.Sprintf("%s [stage '%s' event '%s']", e.Reason, stage, event)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets errors.Is match both ErrResolution and the wrapped cause.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// FormatError reports a journey token that cannot be decoded.
type FormatError struct {
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid journey token %q: %s", e.Token, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}
