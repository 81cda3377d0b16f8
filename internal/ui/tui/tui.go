// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts a full-screen BubbleTea program with model and returns the final model.
// Extra options are appended after the alt-screen option.
func Run[M tea.Model](model M, opts ...tea.ProgramOption) (M, error) {
	var zero M
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return zero, err
	}
	m, ok := final.(M)
	if !ok {
		return zero, fmt.Errorf("unexpected final model %T", final)
	}
	return m, nil
}
