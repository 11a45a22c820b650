// Package tui renders command output for terminals.
package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour,
// with a style matching the terminal background.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RenderMarkdown writes markdown to w, styled when w is a terminal and
// verbatim otherwise so the output stays pipeable.
func RenderMarkdown(w io.Writer, markdown string) error {
	if !IsTerminal(w) {
		_, err := io.WriteString(w, markdown)
		return err
	}

	width := 0
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = cols
		}
	}
	render, err := NewRenderer(width)
	if err != nil {
		return err
	}
	styled, err := render(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, styled)
	return err
}
