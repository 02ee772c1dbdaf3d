package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/phrazzld/filetrack/internal/domain"
)

// tasksChangedMsg signals that the tracker applied at least one mutation.
type tasksChangedMsg struct{}

// ChangeFeed returns an observer for tracker.WithOnChange and the channel
// it signals. Bursts of changes coalesce into a single signal, and the
// observer never blocks the poller.
func ChangeFeed() (func(domain.Task), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	notify := func(domain.Task) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return notify, ch
}

// waitForChange blocks until the feed signals and reports it to the model.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return tasksChangedMsg{}
	}
}
