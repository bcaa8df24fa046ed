package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlainRenderer returns markdown unchanged.
func PlainRenderer() func(string) (string, error) {
	return func(markdown string) (string, error) { return markdown, nil }
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RendererFor picks the glamour renderer for terminals and the plain one
// for pipes and files.
func RendererFor(f *os.File) func(string) (string, error) {
	if IsTerminal(f) {
		return NewRenderer()
	}
	return PlainRenderer()
}
