package domain

// TransitionResult describes a resolved transition.
type TransitionResult struct {
	Previous  *Stage
	Next      *Stage
	Direction Direction

	// Decisions lists the decision stages traversed, in order.
	Decisions []string
}

// BackLinkText is the prompt for returning to the previous stage.
func (r TransitionResult) BackLinkText() string {
	if r.Previous == nil {
		return ""
	}
	return r.Previous.DisplayName
}
