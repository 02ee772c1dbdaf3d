// Package tui is the interactive terminal front-end of filetrack. It shows
// a path input for uploads and the live task list with a cancel action.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/phrazzld/filetrack/internal/domain"
)

// Tracker is the subset of *tracker.Tracker the UI drives.
type Tracker interface {
	Upload(ctx context.Context, file *domain.File) (domain.Task, error)
	Cancel(id string) error
	List() []domain.Task
}

// Focus selects which pane receives key presses.
type Focus int

const (
	// FocusInput routes keys to the path input.
	FocusInput Focus = iota
	// FocusList routes keys to the task list.
	FocusList
)

// uploadDoneMsg reports the outcome of an upload started from the input.
type uploadDoneMsg struct {
	path string
	task domain.Task
	err  error
}

// Model is the root Bubble Tea model.
type Model struct {
	tracker Tracker
	changes <-chan struct{}

	input    textinput.Model
	focus    Focus
	tasks    []domain.Task
	cursor   int
	notice   string
	errMsg   string
	quitting bool

	width  int
	height int
}

// NewModel creates the model. changes is the channel returned by
// ChangeFeed for the tracker's observer; it may be nil.
func NewModel(tracker Tracker, changes <-chan struct{}) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/file.pdf"
	ti.Prompt = "upload> "
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Focus()

	return Model{
		tracker: tracker,
		changes: changes,
		input:   ti,
		focus:   FocusInput,
		tasks:   tracker.List(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-12)
		return m, nil

	case tasksChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case uploadDoneMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("%s: %v", msg.path, msg.err)
			m.notice = ""
		} else {
			m.errMsg = ""
			m.notice = fmt.Sprintf("uploaded %s as %s", msg.task.FileName, msg.task.ID)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		if m.focus == FocusInput {
			return m.handleInputKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.focus == FocusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.errMsg = ""
		m.notice = "uploading " + path + "..."
		return m, uploadCmd(m.tracker, path)

	case "tab", "esc":
		m.focus = FocusList
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}

	case "c":
		task, ok := m.selected()
		if !ok || task.Status != domain.StatusPending {
			return m, nil
		}
		if err := m.tracker.Cancel(task.ID); err != nil {
			m.errMsg = fmt.Sprintf("cancel %s: %v", task.ID, err)
		} else {
			m.errMsg = ""
			m.notice = "cancelled " + task.ID
		}
		m.refresh()

	case "tab", "u", "/":
		m.focus = FocusInput
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) refresh() {
	m.tasks = m.tracker.List()
	if m.cursor >= len(m.tasks) {
		m.cursor = max(0, len(m.tasks)-1)
	}
}

func (m Model) selected() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return domain.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// uploadCmd opens path and uploads it through the tracker off the UI goroutine.
func uploadCmd(tracker Tracker, path string) tea.Cmd {
	return func() tea.Msg {
		file, closer, err := domain.OpenFile(path)
		if err != nil {
			return uploadDoneMsg{path: path, err: err}
		}
		defer closer.Close()

		task, err := tracker.Upload(context.Background(), file)
		return uploadDoneMsg{path: path, task: task, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("filetrack"))
	b.WriteString("\n")

	inputBox := boxStyle
	listBox := boxStyle
	if m.focus == FocusInput {
		inputBox = focusedBoxStyle
	} else {
		listBox = focusedBoxStyle
	}

	b.WriteString(inputBox.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(listBox.Render(m.renderTasks()))
	b.WriteString("\n")

	switch {
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
	case m.notice != "":
		b.WriteString(subtleStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderTasks() string {
	if len(m.tasks) == 0 {
		return subtleStyle.Render("No uploads yet.")
	}

	var b strings.Builder
	for i, task := range m.tasks {
		marker := "  "
		id := task.ID
		if i == m.cursor && m.focus == FocusList {
			marker = "> "
			id = selectedStyle.Render(id)
		}
		fmt.Fprintf(&b, "%s%s  %s  %s (%s)", marker, id, renderStatus(task.Status),
			task.FileName, humanize.IBytes(uint64(task.Size)))
		if i < len(m.tasks)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) helpLine() string {
	if m.focus == FocusInput {
		return "enter upload • tab task list • ctrl+c quit"
	}
	items := []string{"↑/↓ select"}
	if task, ok := m.selected(); ok && task.Status == domain.StatusPending {
		items = append(items, "c cancel")
	}
	items = append(items, "tab upload", "q quit")
	return strings.Join(items, " • ")
}

// Focus returns the focused pane.
func (m Model) Focus() Focus {
	return m.focus
}

// Cursor returns the selected row.
func (m Model) Cursor() int {
	return m.cursor
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}
