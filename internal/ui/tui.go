package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Tasks is the task list the TUI drives. *todo.Store and *session.Session
// both satisfy it.
type Tasks interface {
	Add(text, dateStr string) (todo.Task, error)
	Toggle(id int) (bool, error)
	Delete(id int) (bool, error)
	SetFilter(f todo.Filter)
	Filter() todo.Filter
	Filtered() []todo.Task
	Stats() todo.Stats
	Today() todo.Date
	ValidateTaskText(text string) todo.ValidationResult
	ValidateDueDate(dateStr string) todo.ValidationResult
}

// RunTUI starts the interactive task list on the terminal.
func RunTUI(ctx context.Context, tasks Tasks, title string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(tasks, title, NewStyles(lipgloss.DefaultRenderer()))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeConfirmDelete
	modeHelp
)

const (
	fieldText = iota
	fieldDate
)

const shakeDuration = 400 * time.Millisecond

type shakeDoneMsg struct{}

type tuiModel struct {
	tasks  Tasks
	title  string
	styles Styles

	mode    mode
	view    []todo.Task
	cursor  int
	status  string
	pending *todo.Task

	text     textinput.Model
	date     textinput.Model
	focus    int
	textHint string
	dateHint string
	shake    bool
}

func newTUIModel(tasks Tasks, title string, styles Styles) *tuiModel {
	text := textinput.New()
	text.Placeholder = "What needs to be done?"
	text.CharLimit = 256
	text.Width = 40

	date := textinput.New()
	date.Placeholder = todo.DateLayout
	date.CharLimit = len(todo.DateLayout)
	date.Width = len(todo.DateLayout) + 1

	if title == "" {
		title = "Tasks"
	}
	m := &tuiModel{
		tasks:  tasks,
		title:  title,
		styles: styles,
		text:   text,
		date:   date,
		status: "a add · space toggle · d delete · 1-4 filter · ? help · q quit",
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg.String())
		case modeHelp:
			m.mode = modeList
			return m, nil
		default:
			return m.updateList(msg.String())
		}
	case tea.WindowSizeMsg:
		if w := msg.Width - 12; w > 10 {
			m.text.Width = w
		}
	case shakeDoneMsg:
		m.shake = false
	}
	return m, nil
}

func (m *tuiModel) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view)-1 {
			m.cursor++
		}
	case "1", "2", "3", "4":
		f := todo.Filters()[key[0]-'1']
		m.tasks.SetFilter(f)
		m.cursor = 0
		m.refresh()
		m.status = "Showing " + string(f)
	case " ", "x":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		if _, err := m.tasks.Toggle(task.ID); err != nil {
			m.status = "toggle failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("Toggled #%d", task.ID)
		}
		m.refresh()
	case "d", "delete":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pending = &task
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q? y/n", task.Text)
	case "a", "n":
		m.mode = modeAdd
		m.focus = fieldText
		m.textHint, m.dateHint = "", ""
		m.text.SetValue("")
		m.date.SetValue(m.tasks.Today().String())
		m.date.Blur()
		m.status = "enter next/submit · tab switch field · esc cancel"
		return m, m.text.Focus()
	case "?", "h":
		m.mode = modeHelp
	}
	return m, nil
}

func (m *tuiModel) updateConfirmDelete(key string) (tea.Model, tea.Cmd) {
	task := m.pending
	m.pending = nil
	m.mode = modeList
	if task == nil {
		return m, nil
	}
	switch key {
	case "y", "Y":
		if _, err := m.tasks.Delete(task.ID); err != nil {
			m.status = "delete failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("Deleted #%d", task.ID)
		}
		m.refresh()
	default:
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m *tuiModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.closeForm("Add cancelled")
		return m, nil
	case "tab", "shift+tab":
		return m, m.switchField()
	case "enter":
		if m.focus == fieldText {
			return m, m.switchField()
		}
		return m.submit()
	}

	var cmd tea.Cmd
	if m.focus == fieldText {
		m.text, cmd = m.text.Update(msg)
		m.textHint = m.tasks.ValidateTaskText(m.text.Value()).Message()
	} else {
		m.date, cmd = m.date.Update(msg)
		m.dateHint = ""
		if strings.TrimSpace(m.date.Value()) != "" {
			m.dateHint = m.tasks.ValidateDueDate(m.date.Value()).Message()
		}
	}
	return m, cmd
}

func (m *tuiModel) submit() (tea.Model, tea.Cmd) {
	task, err := m.tasks.Add(m.text.Value(), m.date.Value())
	var addErr *todo.AddError
	switch {
	case errors.As(err, &addErr):
		m.textHint = addErr.Text.Message()
		if addErr.Text.Neutral() {
			m.textHint = "Task text is required"
		}
		m.dateHint = addErr.Date.Message()
		m.shake = true
		return m, tea.Tick(shakeDuration, func(time.Time) tea.Msg { return shakeDoneMsg{} })
	case err != nil:
		m.closeForm(fmt.Sprintf("Added #%d but saving failed: %v", task.ID, err))
	default:
		m.closeForm(fmt.Sprintf("Added #%d", task.ID))
	}
	m.refresh()
	return m, nil
}

func (m *tuiModel) switchField() tea.Cmd {
	if m.focus == fieldText {
		m.focus = fieldDate
		m.text.Blur()
		return m.date.Focus()
	}
	m.focus = fieldText
	m.date.Blur()
	return m.text.Focus()
}

func (m *tuiModel) closeForm(status string) {
	m.mode = modeList
	m.text.Blur()
	m.date.Blur()
	m.shake = false
	m.status = status
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return todo.Task{}, false
	}
	return m.view[m.cursor], true
}

func (m *tuiModel) refresh() {
	m.view = m.tasks.Filtered()
	if m.cursor >= len(m.view) {
		m.cursor = max(len(m.view)-1, 0)
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")
	m.writeTabs(&b)

	if m.mode == modeHelp {
		writeHelp(&b)
		return b.String()
	}

	today := m.tasks.Today()
	if len(m.view) == 0 {
		b.WriteString("  " + m.styles.Muted.Render(EmptyMessage) + "\n")
	}
	for i := range m.view {
		cursor := "  "
		line := FormatTask(m.styles, &m.view[i], today)
		if i == m.cursor && m.mode != modeAdd {
			cursor = "> "
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render(FormatStats(m.tasks.Stats())) + "\n\n")

	if m.mode == modeAdd {
		m.writeForm(&b)
	}
	b.WriteString(m.status + "\n")
	return b.String()
}

func (m *tuiModel) writeTabs(b *strings.Builder) {
	active := m.tasks.Filter()
	tabs := make([]string, 0, 4)
	for i, f := range todo.Filters() {
		label := fmt.Sprintf("%d %s", i+1, f)
		if f == active {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "   ") + "\n\n")
}

func (m *tuiModel) writeForm(b *strings.Builder) {
	indent := "  "
	if m.shake {
		indent = "      "
	}
	b.WriteString(indent + "Text: " + m.text.View() + "\n")
	if m.textHint != "" {
		b.WriteString(indent + "      " + m.styles.Error.Render(m.textHint) + "\n")
	}
	b.WriteString(indent + "Due:  " + m.date.View() + "\n")
	if m.dateHint != "" {
		b.WriteString(indent + "      " + m.styles.Error.Render(m.dateHint) + "\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  up/k down/j  Move selection\n")
	b.WriteString("  a            Add a task\n")
	b.WriteString("  space, x     Toggle completion\n")
	b.WriteString("  d            Delete (asks for confirmation)\n")
	b.WriteString("  1            Show all tasks\n")
	b.WriteString("  2            Show tasks due today\n")
	b.WriteString("  3            Show upcoming tasks\n")
	b.WriteString("  4            Show completed tasks\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
	b.WriteString("Press any key to return.\n")
}
