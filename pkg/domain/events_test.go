package domain_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colour string

func TestParamEvent_Parse(t *testing.T) {
	b, err := domain.NewParamEvent[bool]("answer").Parse("true")
	require.NoError(t, err)
	assert.True(t, b)

	n, err := domain.NewParamEvent[int]("count").Parse("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	c, err := domain.NewParamEvent[colour]("pick").Parse("red")
	require.NoError(t, err)
	assert.Equal(t, colour("red"), c)

	f, err := domain.NewParamEvent[float64]("weight").Parse("1.5")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 0.0001)

	_, err = domain.NewParamEvent[bool]("answer").Parse("maybe")
	assert.Error(t, err)
}

func TestParamEvent_Metadata(t *testing.T) {
	e := domain.NewParamEvent[colour]("pick")
	assert.True(t, e.Parameterised())
	assert.Equal(t, "pick", e.Mnemonic())
	assert.Equal(t, "domain_test.colour", e.ParamType())
	assert.False(t, domain.EventNext.Parameterised())
}

func TestMatch(t *testing.T) {
	s1 := domain.NewRenderedStage("s1", "One", nil)
	s2 := domain.NewRenderedStage("s2", "Two", nil)
	conditions := map[string]domain.TransitionAction{
		"true": domain.NewMove(s1, domain.Forward),
	}
	otherwise := domain.NewMove(s2, domain.Forward)

	action, key, err := domain.Match(conditions, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "true", key)
	assert.Equal(t, s1, action.(domain.Move).Target)

	action, _, err = domain.Match(conditions, otherwise, false)
	require.NoError(t, err)
	assert.Equal(t, s2, action.(domain.Move).Target)

	_, _, err = domain.Match(conditions, nil, false)
	assert.Error(t, err)

	_, _, err = domain.Match(conditions, otherwise, nil)
	assert.Error(t, err)

	_, _, err = domain.Match(conditions, otherwise, "")
	assert.Error(t, err)
}

func TestResolutionError(t *testing.T) {
	err := &domain.ResolutionError{Stage: "s1", Event: "_NEXT", Reason: "no transition defined"}
	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Contains(t, err.Error(), "s1")
	assert.Contains(t, err.Error(), "_NEXT")

	wrapped := &domain.ResolutionError{Reason: "bad argument", Err: domain.ErrArgumentMismatch}
	assert.ErrorIs(t, wrapped, domain.ErrArgumentMismatch)
	assert.ErrorIs(t, wrapped, domain.ErrResolution)
	assert.Contains(t, wrapped.Error(), "unknown stage")
}
