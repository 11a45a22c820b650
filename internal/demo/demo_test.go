package demo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, opts ...demo.Option) *manager.Manager {
	t.Helper()
	defs, err := demo.Definitions(opts...)
	require.NoError(t, err)
	mgr, err := manager.New(defs)
	require.NoError(t, err)
	return mgr
}

func TestDemo_Journeys(t *testing.T) {
	mgr := newManager(t)
	assert.ElementsMatch(t, []string{demo.ApplyJourney, demo.RenewJourney}, mgr.Journeys())
}

func TestDemo_DualUseToPayment(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	out, err := mgr.StartJourney(ctx, demo.ApplyJourney)
	require.NoError(t, err)
	assert.Equal(t, "goods-type", out.Stage.Name)
	assert.Equal(t, "Back to dashboard", out.BackLink.Prompt)

	out, err = manager.PerformParamTransition(ctx, mgr, out.Token, demo.GoodsType, demo.GoodsDualUse)
	require.NoError(t, err)
	assert.Equal(t, "control-rating", out.Stage.Name)

	out, err = mgr.PerformTransition(ctx, out.Token, domain.EventNext)
	require.NoError(t, err)
	out, err = manager.PerformParamTransition(ctx, mgr, out.Token, demo.Country, "France")
	require.NoError(t, err)
	assert.Equal(t, "summary", out.Stage.Name)

	out, err = mgr.PerformTransition(ctx, out.Token, domain.EventYes)
	require.NoError(t, err)
	assert.True(t, out.Redirect())
	assert.Contains(t, out.RedirectURL, "/payments/new?")
	assert.Contains(t, out.RedirectURL, domain.ContextParamName+"=")
}

func TestDemo_ControlListDecision(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t, demo.WithControlListCheck(func(context.Context) (bool, error) { return false, nil }))

	out, err := mgr.StartJourney(ctx, demo.ApplyJourney)
	require.NoError(t, err)
	out, err = manager.PerformParamTransition(ctx, mgr, out.Token, demo.GoodsType, demo.GoodsDualUse)
	require.NoError(t, err)
	assert.Equal(t, "no-licence-needed", out.Stage.Name)

	out, err = mgr.PerformTransition(ctx, out.Token, domain.EventCancel)
	require.NoError(t, err)
	assert.Equal(t, "goods-type", out.Stage.Name)
	assert.Equal(t, "Back to dashboard", out.BackLink.Prompt)
}

func TestDemo_ControlListFailure(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.New("rating service unavailable")
	mgr := newManager(t, demo.WithControlListCheck(func(context.Context) (bool, error) { return false, unavailable }))

	out, err := mgr.StartJourney(ctx, demo.ApplyJourney)
	require.NoError(t, err)
	_, err = manager.PerformParamTransition(ctx, mgr, out.Token, demo.GoodsType, demo.GoodsDualUse)
	assert.ErrorIs(t, err, unavailable)
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestDemo_EmbargoedDestination(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t, demo.WithEmbargoedCountries("Atlantis"))

	out, err := mgr.StartJourney(ctx, demo.ApplyJourney)
	require.NoError(t, err)
	out, err = manager.PerformParamTransition(ctx, mgr, out.Token, demo.GoodsType, demo.GoodsMilitary)
	require.NoError(t, err)
	out, err = mgr.PerformTransition(ctx, out.Token, domain.EventNext)
	require.NoError(t, err)
	destination := out.Token

	out, err = manager.PerformParamTransition(ctx, mgr, destination, demo.Country, "atlantis")
	require.NoError(t, err)
	assert.Equal(t, "embargoed", out.Stage.Name)

	out, err = mgr.PerformTransition(ctx, out.Token, domain.EventCancel)
	require.NoError(t, err)
	assert.Equal(t, "destination", out.Stage.Name)
	assert.Equal(t, destination, out.Token, "moving back pops to the earlier entry")
}

func TestDemo_RenewSharesSummary(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	out, err := mgr.StartJourney(ctx, demo.RenewJourney)
	require.NoError(t, err)
	out, err = mgr.PerformTransition(ctx, out.Token, domain.EventNext)
	require.NoError(t, err)
	assert.Equal(t, "summary", out.Stage.Name)
	assert.Equal(t, "Existing licence", out.BackLink.Prompt)

	name, err := mgr.CurrentStageName(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "summary", name)
}
