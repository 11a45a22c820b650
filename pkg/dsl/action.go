package dsl

import "github.com/aretw0/waypoint/pkg/domain"

// ActionBuilder produces a transition action when the builder is frozen.
type ActionBuilder interface {
	build() (domain.TransitionAction, error)
}

type moveBuilder struct {
	target    domain.Destination
	direction domain.Direction
}

func (m moveBuilder) build() (domain.TransitionAction, error) {
	if domain.Unwrap(m.target) == nil {
		return nil, domain.Definitionf("move target cannot be nil")
	}
	return domain.NewMove(m.target, m.direction), nil
}

// MoveTo leads to target: a stage, or a decision resolved on the way.
func MoveTo(target domain.Destination) ActionBuilder {
	return moveBuilder{target: target, direction: domain.Forward}
}

// BackTo returns to stage, truncating the history back to it.
func BackTo(stage *domain.Stage) ActionBuilder {
	return moveBuilder{target: stage, direction: domain.Backward}
}
