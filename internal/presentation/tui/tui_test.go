package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, "# Title\n"))
	assert.Equal(t, "# Title\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(80)
	require.NoError(t, err)
	out, err := render("# Journey `apply`\n")
	require.NoError(t, err)
	assert.Contains(t, out, "apply")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "version 1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[", "no escape codes without a terminal")
}
