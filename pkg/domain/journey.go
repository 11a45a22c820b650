package domain

import (
	"slices"
	"strings"
)

// Journey is one traversal of a journey definition: its name and the stack
// of stage ids visited, oldest first. The last entry is the current stage.
type Journey struct {
	Name    string
	History []string
}

// NewJourney creates a journey positioned at startStageID.
func NewJourney(name, startStageID string) *Journey {
	return &Journey{
		Name:    name,
		History: []string{startStageID},
	}
}

// CurrentStageID returns the id at the top of the history.
func (j *Journey) CurrentStageID() string {
	if len(j.History) == 0 {
		return ""
	}
	return j.History[len(j.History)-1]
}

// PreviousStageID returns the second-to-last history entry, if any.
func (j *Journey) PreviousStageID() (string, bool) {
	if len(j.History) < 2 {
		return "", false
	}
	return j.History[len(j.History)-2], true
}

// Depth returns the number of history entries.
func (j *Journey) Depth() int {
	return len(j.History)
}

// PushStage records a forward move to stageID.
func (j *Journey) PushStage(stageID string) {
	j.History = append(j.History, stageID)
}

// PopStage discards the current stage, never the last remaining entry.
func (j *Journey) PopStage() bool {
	if len(j.History) < 2 {
		return false
	}
	j.History = j.History[:len(j.History)-1]
	return true
}

// PopBackToStage leaves the current stage and unwinds the history until
// targetID is on top. If targetID is not found the history is depleted and
// targetID becomes its sole entry. It reports whether the target was found.
func (j *Journey) PopBackToStage(targetID string) bool {
	// The current stage is always discarded, even when it is the target.
	if len(j.History) > 0 {
		j.History = j.History[:len(j.History)-1]
	}

	found := false
	for len(j.History) > 0 {
		popped := j.History[len(j.History)-1]
		j.History = j.History[:len(j.History)-1]
		if popped == targetID {
			found = true
			break
		}
	}

	j.History = append(j.History, targetID)
	return found
}

// Clone returns an independent copy of the journey.
func (j *Journey) Clone() *Journey {
	return &Journey{Name: j.Name, History: slices.Clone(j.History)}
}

// String serialises the journey to its token form.
func (j *Journey) String() string {
	return j.Name + JourneyNameSeparator + strings.Join(j.History, StageSeparator)
}

// ParseJourney decodes a token produced by Journey.String.
// An empty token yields ErrNoJourney.
func ParseJourney(token string) (*Journey, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoJourney
	}

	name, history, ok := strings.Cut(token, JourneyNameSeparator)
	if !ok {
		return nil, &FormatError{Token: token, Reason: "missing " + JourneyNameSeparator + " separator"}
	}
	if name == "" {
		return nil, &FormatError{Token: token, Reason: "empty journey name"}
	}

	ids := strings.Split(history, StageSeparator)
	for _, id := range ids {
		if id == "" || strings.Contains(id, JourneyNameSeparator) {
			return nil, &FormatError{Token: token, Reason: "malformed history"}
		}
	}

	return &Journey{Name: name, History: ids}, nil
}
