package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/manager"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	defs, err := demo.Definitions()
	require.NoError(t, err)
	mgr, err := manager.New(defs)
	require.NoError(t, err)
	return NewServer(mgr, "test", WithEvents(demo.Events()...))
}

func TestServer_JourneyTools(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	var req mcp.CallToolRequest

	start, err := s.handleStart(ctx, req, map[string]any{"journey": demo.ApplyJourney})
	require.NoError(t, err)
	assert.Equal(t, "goods-type", start.Stage)
	assert.Equal(t, "Back to dashboard", start.BackLink)

	next, err := s.handleFire(ctx, req, map[string]any{
		"token": start.Token,
		"event": demo.GoodsType.Mnemonic(),
		"arg":   demo.GoodsMilitary,
	})
	require.NoError(t, err)
	assert.Equal(t, "control-rating", next.Stage)
	assert.Equal(t, "What are you exporting?", next.BackLink)

	back, err := s.handleBack(ctx, req, map[string]any{"token": next.Token})
	require.NoError(t, err)
	assert.Equal(t, start.Token, back.Token)

	exit, err := s.handleBack(ctx, req, map[string]any{"token": back.Token})
	require.NoError(t, err)
	assert.True(t, exit.Exited)
	assert.Equal(t, "/dashboard", exit.Redirect)
}

func TestServer_ToolErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	var req mcp.CallToolRequest

	_, err := s.handleStart(ctx, req, map[string]any{"journey": "ghost"})
	assert.ErrorIs(t, err, domain.ErrUnknownJourney)

	start, err := s.handleStart(ctx, req, map[string]any{"journey": demo.ApplyJourney})
	require.NoError(t, err)

	_, err = s.handleFire(ctx, req, map[string]any{"token": start.Token})
	assert.Error(t, err)

	_, err = s.handleFire(ctx, req, map[string]any{"token": start.Token, "event": "_NEXT"})
	assert.ErrorIs(t, err, domain.ErrResolution)

	_, err = s.handleFire(ctx, req, map[string]any{"token": "", "event": "_NEXT"})
	assert.ErrorIs(t, err, domain.ErrNoJourney)
}

func TestServer_Graph(t *testing.T) {
	s := newTestServer(t)

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"journey": demo.RenewJourney}
	res, err := s.handleGraph(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "graph TD")

	req.Params.Arguments = map[string]any{"journey": "ghost"}
	res, err = s.handleGraph(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
