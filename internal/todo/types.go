package todo

import (
	"strings"
	"time"
)

// Priority is the urgency bucket derived from a task's due date.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ComputePriority derives the priority of a task due on due when created on
// today.
func ComputePriority(due, today Date) Priority {
	diffDays := today.DaysUntil(due)
	switch {
	case diffDays <= 1:
		return PriorityHigh
	case diffDays <= 7:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Filter names a view over the task list.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterUpcoming  Filter = "upcoming"
	FilterCompleted Filter = "completed"
)

// Filters returns the known filters in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterToday, FilterUpcoming, FilterCompleted}
}

// ParseFilter normalizes s into a known filter. The boolean is false when s
// names no known filter, in which case FilterAll is returned.
func ParseFilter(s string) (Filter, bool) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterAll, FilterToday, FilterUpcoming, FilterCompleted:
		return f, true
	case "":
		return FilterAll, true
	}
	return FilterAll, false
}

// Task is a single entry of the task list.
type Task struct {
	ID        int       `json:"id" yaml:"id" toml:"id"`
	Text      string    `json:"text" yaml:"text" toml:"text"`
	Date      Date      `json:"date" yaml:"date" toml:"date"`
	Completed bool      `json:"completed" yaml:"completed" toml:"completed"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
	Priority  Priority  `json:"priority" yaml:"priority" toml:"priority"`
}

// IsZero returns true if the task has no ID.
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// Matches reports whether t belongs to the view f on the given day.
// Unknown filters match everything.
func (t *Task) Matches(f Filter, today Date) bool {
	switch f {
	case FilterToday:
		return t.Date == today
	case FilterUpcoming:
		return t.Date.After(today) && !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Overdue reports whether t is incomplete and due before today.
func (t *Task) Overdue(today Date) bool {
	return !t.Completed && !t.Date.IsZero() && t.Date.Before(today)
}

// Stats summarizes a task collection.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	DueToday  int `json:"due_today"`
	Overdue   int `json:"overdue"`
}

// ComputeStats counts tasks by state relative to today.
func ComputeStats(tasks []Task, today Date) Stats {
	var s Stats
	for i := range tasks {
		t := &tasks[i]
		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			s.Pending++
		}
		if !t.Completed && t.Date == today {
			s.DueToday++
		}
		if t.Overdue(today) {
			s.Overdue++
		}
	}
	return s
}
