package domain_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJourney_RoundTrip(t *testing.T) {
	tokens := []string{
		"demo~a1b2c3d4",
		"demo~a1b2c3d4-0000ffff",
		"licence~11111111-22222222-33333333-11111111",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			j, err := domain.ParseJourney(token)
			require.NoError(t, err)
			assert.Equal(t, token, j.String())
		})
	}
}

func TestJourney_Parse(t *testing.T) {
	j, err := domain.ParseJourney("demo~s1-s2-s3")
	require.NoError(t, err)
	assert.Equal(t, "demo", j.Name)
	assert.Equal(t, []string{"s1", "s2", "s3"}, j.History)
	assert.Equal(t, "s3", j.CurrentStageID())

	prev, ok := j.PreviousStageID()
	assert.True(t, ok)
	assert.Equal(t, "s2", prev)
}

func TestJourney_ParseErrors(t *testing.T) {
	t.Run("Empty token", func(t *testing.T) {
		_, err := domain.ParseJourney("  ")
		assert.ErrorIs(t, err, domain.ErrNoJourney)
	})

	cases := map[string]string{
		"Missing separator": "demo-s1-s2",
		"Empty name":        "~s1",
		"Empty history":     "demo~",
		"Empty entry":       "demo~s1--s2",
		"Double separator":  "demo~s1~s2",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := domain.ParseJourney(token)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrFormat)

			var fe *domain.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, token, fe.Token)
		})
	}
}

func TestJourney_PushThenPopRestoresHistory(t *testing.T) {
	j := domain.NewJourney("demo", "s1")
	j.PushStage("s2")
	before := j.Clone()

	j.PushStage("s3")
	found := j.PopBackToStage("s2")

	assert.True(t, found)
	assert.Equal(t, before.History, j.History)
	assert.Equal(t, before.String(), j.String())
}

func TestJourney_PopBackToStage(t *testing.T) {
	tests := []struct {
		name    string
		history []string
		target  string
		want    []string
		found   bool
	}{
		{"Previous stage", []string{"a", "b", "c"}, "b", []string{"a", "b"}, true},
		{"Further back", []string{"a", "b", "c", "d"}, "a", []string{"a"}, true},
		{"Current stage is discarded first", []string{"a", "b", "a"}, "a", []string{"a"}, true},
		{"Absent target depletes history", []string{"a", "b", "c"}, "x", []string{"x"}, false},
		{"Single entry", []string{"a"}, "x", []string{"x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &domain.Journey{Name: "demo", History: tt.history}
			found := j.PopBackToStage(tt.target)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, j.History)
			assert.Equal(t, tt.target, j.CurrentStageID())
		})
	}
}

func TestJourney_CloneIsIndependent(t *testing.T) {
	j := domain.NewJourney("demo", "s1")
	c := j.Clone()
	c.PushStage("s2")

	assert.Equal(t, 1, j.Depth())
	assert.Equal(t, 2, c.Depth())
}
