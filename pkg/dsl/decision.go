package dsl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/waypoint/pkg/domain"
)

type decisionEntry struct {
	stage   *domain.DecisionStage
	decide  domain.DecideFunc
	convert func(any) (any, error)
	branch  *branchCore
}

func (d *decisionEntry) build() (*domain.DecisionLogic, error) {
	conditions, otherwise, err := d.branch.buildConditions()
	if err != nil {
		return nil, err
	}
	return &domain.DecisionLogic{
		Decide:     d.decide,
		Convert:    d.convert,
		Conditions: conditions,
		Otherwise:  otherwise,
	}, nil
}

// Decision is a decision stage whose result is matched as a K. It can be
// used wherever a destination is expected.
type Decision[K any] struct {
	*domain.DecisionStage
	branch *BranchBuilder[K]
}

// When registers the action taken when the decision result equals v.
func (d *Decision[K]) When(v K, a ActionBuilder) *Decision[K] {
	d.branch.When(v, a)
	return d
}

// Otherwise registers the action taken when no condition matches.
func (d *Decision[K]) Otherwise(a ActionBuilder) {
	d.branch.Otherwise(a)
}

// DefineDecision registers a decision stage whose result is matched as is.
func DefineDecision[T any](b *Builder, name string, decider func(context.Context) (T, error)) *Decision[T] {
	return DefineDecisionWith(b, name, decider, func(v T) T { return v })
}

// DefineDecisionWith registers a decision stage whose result is converted
// before matching.
func DefineDecisionWith[T, K any](b *Builder, name string, decider func(context.Context) (T, error), convert func(T) K) *Decision[K] {
	ds := domain.NewDecisionStage(name)
	branch := newBranch[K](b, ds.String())
	d := &Decision[K]{DecisionStage: ds, branch: branch}

	if decider == nil {
		b.fail("%s has no decider", ds)
	}
	if !b.register(name) {
		return d
	}

	b.decisions[ds.ID] = &decisionEntry{
		stage: ds,
		decide: func(ctx context.Context) (any, error) {
			v, err := decider(ctx)
			return v, err
		},
		convert: func(v any) (any, error) {
			t, ok := v.(T)
			if !ok {
				if v == nil {
					// Left to matching, which rejects nil results.
					return nil, nil
				}
				return nil, fmt.Errorf("decision result of type %T is not a %s: %w", v, reflect.TypeOf((*T)(nil)).Elem(), domain.ErrArgumentMismatch)
			}
			return convert(t), nil
		},
		branch: branch.core,
	}
	return d
}
