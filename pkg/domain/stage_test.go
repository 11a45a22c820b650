package domain_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestStageID_Deterministic(t *testing.T) {
	a := domain.StageID("applicant-details")
	b := domain.StageID("applicant-details")

	assert.Equal(t, a, b)
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, domain.StageID("applicant-address"))
	assert.False(t, domain.ContainsSeparator(a))
}

func TestStage_Kinds(t *testing.T) {
	rendered := domain.NewRenderedStage("s1", "Step one", nil)
	callable := domain.NewCallableStage("s2", "Step two", "/step-two")

	assert.True(t, rendered.IsRendered())
	assert.False(t, rendered.IsCallable())
	assert.True(t, callable.IsCallable())
	assert.Equal(t, "/step-two", callable.EntryURL)
	assert.Equal(t, domain.StageID("s2"), callable.StageID())
	assert.Equal(t, "stage 's1'", rendered.String())
}

type wrappedDecision struct {
	*domain.DecisionStage
}

func TestUnwrap_EmbeddedDecision(t *testing.T) {
	ds := domain.NewDecisionStage("check")
	var d domain.Destination = wrappedDecision{ds}

	assert.Same(t, ds, domain.Unwrap(d))
	assert.Nil(t, domain.Unwrap(nil))
}

func TestUnwrap_NilNodes(t *testing.T) {
	var stage *domain.Stage
	var decision *domain.DecisionStage

	assert.Nil(t, domain.Unwrap(nil))
	assert.Nil(t, domain.Unwrap(stage))
	assert.Nil(t, domain.Unwrap(decision))

	s := domain.NewRenderedStage("S1", "First", nil)
	assert.Same(t, s, domain.Unwrap(s))
}
