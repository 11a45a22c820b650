package dsl

import (
	"github.com/aretw0/waypoint/pkg/domain"
	"go.uber.org/multierr"
)

type branchCore struct {
	b          *Builder
	where      string
	supplier   func() any
	converter  func(any) (any, error)
	conditions map[string]ActionBuilder
	otherwise  ActionBuilder
}

func (c *branchCore) when(v any, a ActionBuilder) {
	key, err := domain.ConditionKey(v)
	if err != nil {
		c.b.fail("%s: condition %v: %v", c.where, v, err)
		return
	}
	if _, dup := c.conditions[key]; dup {
		c.b.fail("%s: condition '%s' is already defined", c.where, key)
		return
	}
	c.conditions[key] = a
}

func (c *branchCore) setOtherwise(a ActionBuilder) {
	if c.otherwise != nil {
		c.b.fail("%s: otherwise is already defined", c.where)
		return
	}
	c.otherwise = a
}

func (c *branchCore) buildConditions() (map[string]domain.TransitionAction, domain.TransitionAction, error) {
	var errs error
	conditions := make(map[string]domain.TransitionAction, len(c.conditions))
	for key, ab := range c.conditions {
		action, err := ab.build()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		conditions[key] = action
	}

	var otherwise domain.TransitionAction
	if c.otherwise != nil {
		action, err := c.otherwise.build()
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		otherwise = action
	}
	return conditions, otherwise, errs
}

// BranchBuilder maps values of type U to actions. Values are compared by
// their string form, so distinct values must print differently.
type BranchBuilder[U any] struct {
	core *branchCore
}

func newBranch[U any](b *Builder, where string) *BranchBuilder[U] {
	return &BranchBuilder[U]{core: &branchCore{
		b:          b,
		where:      where,
		conditions: make(map[string]ActionBuilder),
	}}
}

// When registers the action taken when the branch value equals v.
func (bb *BranchBuilder[U]) When(v U, a ActionBuilder) *BranchBuilder[U] {
	bb.core.when(v, a)
	return bb
}

// Otherwise registers the action taken when no condition matches.
func (bb *BranchBuilder[U]) Otherwise(a ActionBuilder) {
	bb.core.setOtherwise(a)
}

func (bb *BranchBuilder[U]) build() (domain.TransitionAction, error) {
	conditions, otherwise, err := bb.core.buildConditions()
	if err != nil {
		return nil, err
	}
	return &domain.Branch{
		Supplier:   bb.core.supplier,
		Converter:  bb.core.converter,
		Conditions: conditions,
		Otherwise:  otherwise,
	}, nil
}
