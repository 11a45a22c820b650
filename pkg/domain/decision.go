package domain

import "context"

// DecideFunc computes a decision result. Deciders may read state (a DAO, a
// remote service) but must not change it.
type DecideFunc func(ctx context.Context) (any, error)

// DecisionLogic is the built logic of a DecisionStage.
type DecisionLogic struct {
	Decide     DecideFunc
	Convert    func(any) (any, error)
	Conditions map[string]TransitionAction
	Otherwise  TransitionAction
}

// Select converts a decider result and picks the matching action.
func (l *DecisionLogic) Select(result any) (TransitionAction, string, error) {
	if l.Convert != nil {
		v, err := l.Convert(result)
		if err != nil {
			return nil, "", err
		}
		result = v
	}
	return Match(l.Conditions, l.Otherwise, result)
}
