package waypoint_test

import (
	"context"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReportsErrorsOfEveryBuilder(t *testing.T) {
	b1 := dsl.New()
	s1 := b1.DefineStage("S1", "First", nil)
	b1.AtStage(s1).OnEvent(domain.EventNext).Then(dsl.MoveTo(domain.NewRenderedStage("ghost", "Ghost", nil)))
	b1.DefineJourney("one", s1)

	b2 := dsl.New()
	b2.DefineStage("", "Nameless", nil)

	_, err := waypoint.New(waypoint.WithBuilders(b1, b2))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDefinition)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "name")
}

func TestNew_RequiresJourneys(t *testing.T) {
	_, err := waypoint.New()
	assert.Error(t, err)
}

func TestEngine_EncryptedStoreAndMetrics(t *testing.T) {
	ctx := context.Background()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	require.NoError(t, err)

	backing := memory.NewStore()
	reg := prometheus.NewRegistry()
	eng, err := waypoint.New(
		waypoint.WithBuilders(demo.Builder()),
		waypoint.WithStore(backing, encrypt),
		waypoint.WithMetrics(reg),
		waypoint.WithEvents(demo.Events()...),
	)
	require.NoError(t, err)
	require.NotNil(t, eng.Metrics())

	out, err := eng.StartJourney(ctx, demo.ApplyJourney)
	require.NoError(t, err)
	require.NoError(t, eng.SaveJourney(ctx, "s1", out.Journey))

	raw, err := backing.Load(ctx, "s1", demo.ApplyJourney)
	require.NoError(t, err)
	assert.NotEqual(t, out.Token, raw)

	restored, err := eng.RestoreCurrentStage(ctx, "s1", demo.ApplyJourney)
	require.NoError(t, err)
	assert.Equal(t, out.Token, restored.Token)

	count, err := testutil.GatherAndCount(reg, "waypoint_stage_arrivals_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestEngine_Handler(t *testing.T) {
	eng, err := waypoint.New(
		waypoint.WithBuilders(demo.Builder()),
		waypoint.WithStore(memory.NewStore()),
		waypoint.WithEvents(demo.Events()...),
	)
	require.NoError(t, err)
	h := eng.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/journeys/"+demo.ApplyJourney+"/start", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"stage":"goods-type"`)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		cookie = c
	}
	require.NotNil(t, cookie)

	token, err := eng.Sessions().Load(context.Background(), cookie.Value, demo.ApplyJourney)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/journey/events/goods_type",
		strings.NewReader(domain.ContextParamName+"="+token.String()+"&arg=military"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"stage":"control-rating"`)
}
