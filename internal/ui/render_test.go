package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/tasklist-go/internal/todo"
)

var testClock = todo.ClockFunc(func() time.Time {
	return time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
})

func TestListRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewListRenderer(&buf, testClock)

	if err := r.Render(todo.FilterToday, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := buf.String(); got != EmptyMessage+"\n" {
		t.Errorf("got %q, want placeholder", got)
	}
}

func TestListRendererLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewListRenderer(&buf, testClock)

	tasks := []todo.Task{
		{ID: 2, Text: "Call mom", Date: todo.NewDate(2024, time.January, 10), Priority: todo.PriorityHigh},
		{ID: 12, Text: "Pay rent", Date: todo.NewDate(2024, time.January, 8), Priority: todo.PriorityHigh},
		{ID: 3, Text: "Old report", Date: todo.NewDate(2024, time.January, 5), Completed: true, Priority: todo.PriorityLow},
	}
	if err := r.Render(todo.FilterAll, tasks); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{
		"#2   [ ] Call mom  due 2024-01-10  high",
		"#12  [ ] Pay rent  due 2024-01-08 (overdue)  high",
		"#3   [x] Old report  due 2024-01-05  low",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d:\n got %q\nwant %q", i, got[i], want[i])
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestListRendererWriteError(t *testing.T) {
	r := NewListRenderer(failingWriter{}, testClock)
	if err := r.Render(todo.FilterAll, nil); err == nil {
		t.Error("expected write error")
	}
}

func TestFormatStats(t *testing.T) {
	got := FormatStats(todo.Stats{Total: 6, Completed: 2, Pending: 4, DueToday: 1, Overdue: 1})
	want := "6 total · 4 pending · 2 completed · 1 due today · 1 overdue"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
