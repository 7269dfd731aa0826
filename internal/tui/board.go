// Package tui renders one board in the terminal. Every change goes through a
// boardsync.Engine, so the screen shows optimistic state at once and redraws
// when a confirmation settles.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"planboard/internal/boardsync"
	"planboard/internal/model"
)

// Loader fetches the board's tasks from the server.
type Loader func(ctx context.Context) ([]model.Task, error)

// settledMsg is sent when an intent's confirmation has been folded into the engine.
type settledMsg struct{}

type createdMsg struct{ err error }

type reloadedMsg struct {
	tasks []model.Task
	err   error
}

const hints = "←/→ kolumna  ↑/↓ zadanie  </> przenieś  n nowe  a szkic  e edytuj  d usuń  x anuluj szkic  r odśwież  q wyjdź"

type Board struct {
	ctx    context.Context
	engine *boardsync.Engine
	load   Loader
	title  string

	col, row int
	editing  bool
	editID   string
	input    textinput.Model
	notice   string
	width    int
	quitting bool

	columnStyle   lipgloss.Style
	headerStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	normalStyle   lipgloss.Style
	draftStyle    lipgloss.Style
	errorStyle    lipgloss.Style
	hintStyle     lipgloss.Style
}

// NewBoard creates the board model. load is used by the reload key.
func NewBoard(ctx context.Context, title string, engine *boardsync.Engine, load Loader) *Board {
	ti := textinput.New()
	ti.Placeholder = "Tytuł zadania"
	ti.CharLimit = 200
	ti.Width = 40

	return &Board{
		ctx:    ctx,
		engine: engine,
		load:   load,
		title:  title,
		input:  ti,
		width:  96,

		columnStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75")),
		selectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Bold(true),
		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		draftStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		return b, nil

	case settledMsg, createdMsg:
		b.clamp()
		return b, nil

	case reloadedMsg:
		if msg.err != nil {
			b.notice = "Nie udało się odświeżyć tablicy: " + msg.err.Error()
			return b, nil
		}
		b.notice = ""
		b.engine.Reset(msg.tasks)
		b.clamp()
		return b, nil

	case tea.KeyMsg:
		if b.editing {
			return b.updateEditing(msg)
		}
		return b.updateBoard(msg)
	}
	return b, nil
}

func (b *Board) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		b.quitting = true
		return b, tea.Quit

	case "left", "h":
		if b.col > 0 {
			b.col--
		}
		b.clamp()
	case "right", "l":
		if b.col < len(model.Statuses)-1 {
			b.col++
		}
		b.clamp()
	case "up", "k":
		if b.row > 0 {
			b.row--
		}
	case "down", "j":
		b.row++
		b.clamp()

	case ">", "<":
		task, ok := b.selected()
		if !ok {
			return b, nil
		}
		target := task.Status.Next()
		if msg.String() == "<" {
			target = task.Status.Prev()
		}
		if target == task.Status {
			return b, nil
		}
		intent := b.engine.MoveTask(b.ctx, task.ID, target)
		b.follow(task.ID)
		return b, waitFor(intent)

	case "n":
		return b, b.createTask()

	case "a":
		_, intent := b.engine.AddTemporaryTask(b.ctx, model.NewTaskTitle, model.NewTaskDescription)
		b.col = 0
		b.row = len(b.engine.Column(model.StatusTodo)) - 1
		return b, waitFor(intent)

	case "e":
		task, ok := b.selected()
		if !ok {
			return b, nil
		}
		b.editing = true
		b.editID = task.ID
		b.input.SetValue(task.Title)
		b.input.CursorEnd()
		return b, b.input.Focus()

	case "d":
		task, ok := b.selected()
		if !ok {
			return b, nil
		}
		intent := b.engine.DeleteTask(b.ctx, task.ID)
		b.clamp()
		return b, waitFor(intent)

	case "x":
		if task, ok := b.selected(); ok && strings.HasPrefix(task.ID, boardsync.TempPrefix) {
			b.engine.CancelTemporaryTask(task.ID)
			b.clamp()
		}

	case "r":
		return b, b.reload()
	}
	return b, nil
}

func (b *Board) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		b.stopEditing()
		return b, nil
	case "enter":
		id, title := b.editID, strings.TrimSpace(b.input.Value())
		b.stopEditing()
		var description string
		for _, t := range b.engine.Tasks() {
			if t.ID == id {
				description = t.Description
			}
		}
		return b, waitFor(b.engine.EditTask(b.ctx, id, title, description))
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b *Board) stopEditing() {
	b.editing = false
	b.editID = ""
	b.input.Blur()
	b.input.Reset()
}

func (b *Board) createTask() tea.Cmd {
	engine, ctx := b.engine, b.ctx
	return func() tea.Msg {
		_, err := engine.CreateTask(ctx)
		return createdMsg{err: err}
	}
}

func (b *Board) reload() tea.Cmd {
	if b.load == nil {
		return nil
	}
	load, ctx := b.load, b.ctx
	return func() tea.Msg {
		tasks, err := load(ctx)
		return reloadedMsg{tasks: tasks, err: err}
	}
}

func waitFor(intent *boardsync.Intent) tea.Cmd {
	return func() tea.Msg {
		<-intent.Done()
		return settledMsg{}
	}
}

func (b *Board) selected() (model.Task, bool) {
	column := b.engine.Column(model.Statuses[b.col])
	if b.row < 0 || b.row >= len(column) {
		return model.Task{}, false
	}
	return column[b.row], true
}

// follow keeps the cursor on a task after it moved to another column.
func (b *Board) follow(id string) {
	for c, status := range model.Statuses {
		for r, t := range b.engine.Column(status) {
			if t.ID == id {
				b.col, b.row = c, r
				return
			}
		}
	}
	b.clamp()
}

func (b *Board) clamp() {
	n := len(b.engine.Column(model.Statuses[b.col]))
	if b.row >= n {
		b.row = n - 1
	}
	if b.row < 0 {
		b.row = 0
	}
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.quitting {
		return ""
	}

	colWidth := max(b.width/len(model.Statuses)-4, 16)
	columns := make([]string, 0, len(model.Statuses))
	for c, status := range model.Statuses {
		tasks := b.engine.Column(status)
		lines := []string{b.headerStyle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(tasks)))}
		for r, t := range tasks {
			lines = append(lines, b.renderTask(t, c == b.col && r == b.row, colWidth))
		}
		columns = append(columns, b.columnStyle.Width(colWidth).Render(strings.Join(lines, "\n")))
	}

	var sb strings.Builder
	sb.WriteString(b.headerStyle.Render(b.title))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	sb.WriteString("\n")
	if b.editing {
		sb.WriteString(b.input.View())
		sb.WriteString("\n")
	}
	sb.WriteString(b.footer())
	return sb.String()
}

func (b *Board) renderTask(t model.Task, selected bool, width int) string {
	label := t.Title
	style := b.normalStyle
	switch b.engine.State(t.ID) {
	case boardsync.Temporary:
		label += " …"
		style = b.draftStyle
	case boardsync.PersistedDirty:
		label += " *"
	}
	if runes := []rune(label); len(runes) > width {
		label = string(runes[:width-1]) + "…"
	}
	if selected {
		style = b.selectedStyle
	}
	return style.Render(label)
}

func (b *Board) footer() string {
	if msg := b.engine.Err(); msg != "" {
		return b.errorStyle.Render(msg)
	}
	if b.notice != "" {
		return b.errorStyle.Render(b.notice)
	}
	return b.hintStyle.Render(hints)
}
