// Package tui is the interactive calendar.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/seasonal/internal/countdown"
	"github.com/julianstephens/seasonal/internal/syncer"
)

// Run blocks until the user quits. The caller owns ws and must Close it
// afterwards to flush debounced saves.
func Run(ws *syncer.Workspace, tracker *countdown.Tracker) error {
	p := tea.NewProgram(NewModel(ws, tracker), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
