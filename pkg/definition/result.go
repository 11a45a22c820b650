package definition

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// EventResult delivers the outcome of FireEvent exactly once.
//
// A result is immediate when no decision stage was involved: it is resolved
// before FireEvent returns and Wait never blocks. Otherwise the decision chain
// runs on its own goroutine and the result is available once Done is closed.
type EventResult struct {
	done      chan struct{}
	result    domain.TransitionResult
	err       error
	immediate bool
}

func resolvedResult(r domain.TransitionResult) *EventResult {
	done := make(chan struct{})
	close(done)
	return &EventResult{done: done, result: r, immediate: true}
}

func pendingResult() *EventResult {
	return &EventResult{done: make(chan struct{})}
}

func (r *EventResult) complete(res domain.TransitionResult, err error) {
	r.result = res
	r.err = err
	close(r.done)
}

// Immediate reports whether the transition was resolved without decisions.
func (r *EventResult) Immediate() bool {
	return r.immediate
}

// ImmediateResult returns the transition if the result is immediate.
func (r *EventResult) ImmediateResult() (domain.TransitionResult, bool) {
	if !r.immediate {
		return domain.TransitionResult{}, false
	}
	return r.result, true
}

// Done is closed once the result is available.
func (r *EventResult) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the transition is resolved or ctx is done.
func (r *EventResult) Wait(ctx context.Context) (domain.TransitionResult, error) {
	select {
	case <-r.done:
		return r.result, r.err
	default:
	}

	select {
	case <-r.done:
		return r.result, r.err
	case <-ctx.Done():
		return domain.TransitionResult{}, ctx.Err()
	}
}
