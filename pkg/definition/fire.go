package definition

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// FireEvent resolves a simple event fired at the stage identified by stageID.
//
// Lookup failures are returned directly. When the transition passes through
// decision stages, their failures are reported by EventResult.Wait.
func (d *Definition) FireEvent(ctx context.Context, stageID string, event domain.Event) (*EventResult, error) {
	return d.fire(ctx, stageID, event, nil, false)
}

// FireParamEvent resolves a parameterised event carrying arg.
func FireParamEvent[T domain.EventArg](ctx context.Context, d *Definition, stageID string, event domain.ParamEvent[T], arg T) (*EventResult, error) {
	return d.fire(ctx, stageID, event, arg, true)
}

// Fire resolves any event. Callers that hold an untyped argument (for
// example a decoded form value) use it; hasArg must match the event kind.
func (d *Definition) Fire(ctx context.Context, stageID string, event domain.EventKey, arg any, hasArg bool) (*EventResult, error) {
	return d.fire(ctx, stageID, event, arg, hasArg)
}

func (d *Definition) fire(ctx context.Context, stageID string, event domain.EventKey, arg any, hasArg bool) (*EventResult, error) {
	mnemonic := event.Mnemonic()

	current, ok := d.stages[stageID]
	if !ok {
		return nil, &domain.ResolutionError{
			Stage:  stageID,
			Event:  mnemonic,
			Reason: fmt.Sprintf("stage is not defined in journey '%s'", d.name),
		}
	}

	action, ok := d.transitions.Get(stageID, mnemonic)
	if !ok {
		return nil, &domain.ResolutionError{
			Stage:  current.Name,
			Event:  mnemonic,
			Reason: "no transition defined",
		}
	}

	target, dir, err := resolveAction(action, arg, hasArg)
	if err != nil {
		return nil, &domain.ResolutionError{Stage: current.Name, Event: mnemonic, Reason: "transition not resolved", Err: err}
	}

	switch t := target.(type) {
	case *domain.Stage:
		return resolvedResult(domain.TransitionResult{Previous: current, Next: t, Direction: dir}), nil

	case *domain.DecisionStage:
		res := pendingResult()
		go func() {
			defer func() {
				if p := recover(); p != nil {
					res.complete(domain.TransitionResult{}, &domain.ResolutionError{
						Stage:  current.Name,
						Event:  mnemonic,
						Reason: fmt.Sprintf("decision panicked: %v", p),
					})
				}
			}()
			res.complete(d.resolveDecisions(ctx, current, mnemonic, t))
		}()
		return res, nil

	default:
		return nil, &domain.ResolutionError{Stage: current.Name, Event: mnemonic, Reason: fmt.Sprintf("unknown destination type %T", target)}
	}
}

// resolveAction reduces an action to its destination. Branches are followed
// until a move is found.
func resolveAction(action domain.TransitionAction, arg any, hasArg bool) (domain.Destination, domain.Direction, error) {
	for depth := 0; depth < domain.MaxDecisionDepth; depth++ {
		switch a := action.(type) {
		case domain.Move:
			return domain.Unwrap(a.Target), a.Direction, nil

		case *domain.Branch:
			var transitionArg any
			if hasArg {
				if a.Converter == nil {
					return nil, 0, fmt.Errorf("event argument given but converter function unavailable: %w", domain.ErrArgumentMismatch)
				}
				v, err := a.Converter(arg)
				if err != nil {
					return nil, 0, err
				}
				transitionArg = v
			} else {
				if a.Supplier == nil {
					return nil, 0, fmt.Errorf("event argument not given but argument supplier unavailable: %w", domain.ErrArgumentMismatch)
				}
				transitionArg = a.Supplier()
			}

			next, _, err := domain.Match(a.Conditions, a.Otherwise, transitionArg)
			if err != nil {
				return nil, 0, fmt.Errorf("branch not matched: %w", err)
			}
			action = next

		default:
			return nil, 0, fmt.Errorf("unknown action type %T", action)
		}
	}
	return nil, 0, fmt.Errorf("branch nesting exceeds %d levels", domain.MaxDecisionDepth)
}

// resolveDecisions walks a chain of decision stages until it reaches a
// stage. Each decider runs only after the previous result has been matched.
func (d *Definition) resolveDecisions(ctx context.Context, current *domain.Stage, event string, first *domain.DecisionStage) (domain.TransitionResult, error) {
	fail := func(reason string, err error) (domain.TransitionResult, error) {
		return domain.TransitionResult{}, &domain.ResolutionError{Stage: current.Name, Event: event, Reason: reason, Err: err}
	}

	node := first
	var trail []string
	for depth := 0; depth < domain.MaxDecisionDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Sprintf("decision '%s' abandoned", node.Name), err)
		}

		dec, ok := d.decisions[node.ID]
		if !ok || dec.Logic == nil {
			return fail(fmt.Sprintf("decision '%s' is not defined", node.Name), nil)
		}
		trail = append(trail, node.Name)

		result, err := dec.Logic.Decide(ctx)
		if err != nil {
			return fail(fmt.Sprintf("decision '%s' failed", node.Name), err)
		}

		action, key, err := dec.Logic.Select(result)
		if err != nil {
			return fail(fmt.Sprintf("decision '%s' not matched", node.Name), err)
		}

		// Decision conditions never see the event argument.
		target, dir, err := resolveAction(action, nil, false)
		if err != nil {
			return fail(fmt.Sprintf("decision '%s' result '%s' not resolved", node.Name, key), err)
		}

		switch t := target.(type) {
		case *domain.Stage:
			return domain.TransitionResult{Previous: current, Next: t, Direction: dir, Decisions: trail}, nil
		case *domain.DecisionStage:
			node = t
		default:
			return fail(fmt.Sprintf("decision '%s' leads to unknown destination %T", node.Name, target), nil)
		}
	}
	return fail(fmt.Sprintf("decision chain exceeds %d decisions", domain.MaxDecisionDepth), nil)
}
