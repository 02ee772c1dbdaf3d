package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ClosableTracker is a Tracker that can be torn down.
type ClosableTracker interface {
	Tracker
	Close()
}

// Run starts the TUI and blocks until the user quits. The tracker is closed
// on exit so no polling loop outlives the UI.
func Run(tracker ClosableTracker, changes <-chan struct{}) error {
	defer tracker.Close()

	p := tea.NewProgram(NewModel(tracker, changes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
