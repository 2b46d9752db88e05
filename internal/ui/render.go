// Package ui renders the task list to a terminal, either as plain lines or
// as an interactive bubbletea program.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// EmptyMessage is shown when a view has no tasks.
const EmptyMessage = "No tasks found for this filter."

// Styles holds the lipgloss styles shared by the list renderer and the TUI.
type Styles struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Done      lipgloss.Style
	Overdue   lipgloss.Style
	Error     lipgloss.Style
	Selected  lipgloss.Style
	Priority  map[todo.Priority]lipgloss.Style
	ActiveTab lipgloss.Style
	Tab       lipgloss.Style
}

// NewStyles builds styles bound to r so color output follows r's profile.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed")),
		Muted:     r.NewStyle().Foreground(lipgloss.Color("#6b7280")),
		Done:      r.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#6b7280")),
		Overdue:   r.NewStyle().Foreground(lipgloss.Color("#dc2626")),
		Error:     r.NewStyle().Foreground(lipgloss.Color("#dc2626")),
		Selected:  r.NewStyle().Bold(true),
		ActiveTab: r.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#7c3aed")),
		Tab:       r.NewStyle().Foreground(lipgloss.Color("#6b7280")),
		Priority: map[todo.Priority]lipgloss.Style{
			todo.PriorityHigh:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
			todo.PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
			todo.PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("#10b981")),
		},
	}
}

// ListRenderer writes one line per task to an io.Writer.
type ListRenderer struct {
	w      io.Writer
	styles Styles
	clock  todo.Clock
}

// NewListRenderer returns a renderer writing to w. Colors are used only when
// w is a color-capable terminal.
func NewListRenderer(w io.Writer, clock todo.Clock) *ListRenderer {
	if clock == nil {
		clock = todo.SystemClock{}
	}
	return &ListRenderer{
		w:      w,
		styles: NewStyles(lipgloss.NewRenderer(w)),
		clock:  clock,
	}
}

// Render implements todo.Renderer.
func (r *ListRenderer) Render(filter todo.Filter, tasks []todo.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(r.w, r.styles.Muted.Render(EmptyMessage))
		return err
	}
	today := todo.Today(r.clock)
	var b strings.Builder
	for i := range tasks {
		b.WriteString(FormatTask(r.styles, &tasks[i], today))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// FormatTask renders a single task line: `#id [x] text  due YYYY-MM-DD  priority`.
func FormatTask(s Styles, t *todo.Task, today todo.Date) string {
	mark := " "
	text := t.Text
	if t.Completed {
		mark = "x"
		text = s.Done.Render(text)
	}

	due := "due " + t.Date.String()
	if t.Overdue(today) {
		due = s.Overdue.Render(due + " (overdue)")
	}

	prio := string(t.Priority)
	if style, ok := s.Priority[t.Priority]; ok {
		prio = style.Render(prio)
	}
	return fmt.Sprintf("#%-3d [%s] %s  %s  %s", t.ID, mark, text, due, prio)
}

// FormatStats renders the summary shown under the list.
func FormatStats(st todo.Stats) string {
	return fmt.Sprintf("%d total · %d pending · %d completed · %d due today · %d overdue",
		st.Total, st.Pending, st.Completed, st.DueToday, st.Overdue)
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
