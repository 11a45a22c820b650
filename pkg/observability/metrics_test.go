package observability_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewMetrics(reg).Hooks()
	ctx := context.Background()

	hooks.OnStage(ctx, &domain.JourneyEvent{Type: domain.HookStart, Journey: "apply", To: "details"})
	hooks.OnStage(ctx, &domain.JourneyEvent{
		Type:      domain.HookTransition,
		Journey:   "apply",
		From:      "details",
		To:        "confirm",
		Decisions: []string{"eligible"},
		Duration:  5 * time.Millisecond,
	})
	hooks.OnFailure(ctx, &domain.FailureEvent{
		Journey: "apply",
		Event:   "_NEXT",
		Err:     &domain.ResolutionError{Stage: "confirm", Event: "_NEXT", Reason: "no transition defined"},
	})

	count, err := testutil.GatherAndCount(reg, "waypoint_stage_arrivals_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "waypoint_transition_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "waypoint_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "waypoint_transition_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&domain.ResolutionError{Reason: "x"}, "resolution"},
		{&domain.ResolutionError{Reason: "x", Err: fmt.Errorf("bad: %w", domain.ErrArgumentMismatch)}, "argument"},
		{&domain.ResolutionError{Reason: "x", Err: context.Canceled}, "abandoned"},
		{&domain.FormatError{Token: "x", Reason: "y"}, "format"},
		{domain.ErrNoJourney, "format"},
		{fmt.Errorf("%w 'x'", domain.ErrUnknownJourney), "unknown_journey"},
		{fmt.Errorf("boom"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, observability.Kind(tt.err), tt.err.Error())
	}
}
