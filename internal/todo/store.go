package todo

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrPersist wraps failures reported by the Persistence collaborator.
var ErrPersist = errors.New("persist tasks")

// Persistence loads and saves the whole task collection.
//
// Load returns nil when nothing has been saved yet. Adapters treat malformed
// stored data as an empty collection rather than an error.
type Persistence interface {
	Load() ([]Task, error)
	Save(tasks []Task) error
}

// Renderer displays a filtered view of the task list.
type Renderer interface {
	Render(filter Filter, tasks []Task) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for "today" and creation timestamps.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRenderer sets the renderer used by Render.
func WithRenderer(r Renderer) Option {
	return func(s *Store) {
		s.renderer = r
	}
}

// WithLogger sets the logger for store events.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFilter sets the initial filter.
func WithFilter(f Filter) Option {
	return func(s *Store) {
		s.filter = f
	}
}

// Store is the single source of truth for a task list session.
// It is not safe for concurrent use.
type Store struct {
	persist  Persistence
	renderer Renderer
	clock    Clock
	logger   *log.Logger

	tasks  []Task
	filter Filter
	nextID int
}

// NewStore loads the persisted tasks from p and returns a store over them.
func NewStore(p Persistence, opts ...Option) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("new store: persistence is nil")
	}
	s := &Store{
		persist: p,
		clock:   SystemClock{},
		logger:  log.New(io.Discard),
		filter:  FilterAll,
	}
	for _, opt := range opts {
		opt(s)
	}

	tasks, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	s.tasks = tasks
	s.nextID = nextID(tasks)
	s.logger.Debug("task store loaded", "tasks", len(tasks), "next_id", s.nextID)
	return s, nil
}

func nextID(tasks []Task) int {
	maxID := 0
	for i := range tasks {
		maxID = max(maxID, tasks[i].ID)
	}
	return maxID + 1
}

// ValidateTaskText checks text for submission.
func (s *Store) ValidateTaskText(text string) ValidationResult {
	return validateText(text, s.tasks)
}

// ValidateDueDate checks a YYYY-MM-DD due date for submission.
func (s *Store) ValidateDueDate(dateStr string) ValidationResult {
	_, res := validateDate(dateStr, s.today())
	return res
}

// Add validates the input and appends a new task. On validation failure it
// returns an *AddError and leaves the store untouched.
//
// A persistence failure is returned wrapped in ErrPersist; the task stays in
// memory and is returned alongside the error.
func (s *Store) Add(text, dateStr string) (Task, error) {
	now := s.clock.Now()
	today := DateOf(now)

	textRes := validateText(text, s.tasks)
	due, dateRes := validateDate(dateStr, today)
	if !textRes.Valid || !dateRes.Valid {
		s.logger.Debug("task rejected", "text", textRes.Message(), "date", dateRes.Message())
		return Task{}, &AddError{Text: textRes, Date: dateRes}
	}

	task := Task{
		ID:        s.nextID,
		Text:      strings.TrimSpace(text),
		Date:      due,
		Completed: false,
		CreatedAt: now.UTC(),
		Priority:  ComputePriority(due, today),
	}
	s.nextID++
	s.tasks = append(s.tasks, task)
	s.logger.Debug("task added", "id", task.ID, "date", task.Date, "priority", task.Priority)

	return task, s.save()
}

// Toggle flips the completion state of the task with id. It reports whether
// the task exists.
func (s *Store) Toggle(id int) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.logger.Debug("task toggled", "id", id, "completed", s.tasks[i].Completed)
	return true, s.save()
}

// Delete removes the task with id. It reports whether the task existed.
// Confirmation is the caller's job.
func (s *Store) Delete(id int) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.logger.Debug("task deleted", "id", id)
	return true, s.save()
}

// SetFilter changes the active filter. The filter is not persisted.
func (s *Store) SetFilter(f Filter) {
	s.filter = f
}

// Filter returns the active filter.
func (s *Store) Filter() Filter {
	return s.filter
}

// Filtered returns the tasks matching the active filter, sorted by due date.
func (s *Store) Filtered() []Task {
	return FilterTasks(s.tasks, s.filter, s.today())
}

// FilterTasks returns the tasks of view f on today, stable-sorted by due
// date. The input slice is not modified.
func FilterTasks(tasks []Task, f Filter, today Date) []Task {
	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		if tasks[i].Matches(f, today) {
			out = append(out, tasks[i])
		}
	}
	slices.SortStableFunc(out, func(a, b Task) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Tasks returns a copy of all tasks in insertion order.
func (s *Store) Tasks() []Task {
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task with id.
func (s *Store) Get(id int) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// NextID returns the id the next added task will receive.
func (s *Store) NextID() int {
	return s.nextID
}

// Stats summarizes all tasks, regardless of the active filter.
func (s *Store) Stats() Stats {
	return ComputeStats(s.tasks, s.today())
}

// Today returns the store's current calendar day.
func (s *Store) Today() Date {
	return s.today()
}

// Render passes the filtered view to the configured renderer.
func (s *Store) Render() error {
	if s.renderer == nil {
		return nil
	}
	return s.renderer.Render(s.filter, s.Filtered())
}

func (s *Store) index(id int) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) today() Date {
	return Today(s.clock)
}

func (s *Store) save() error {
	if err := s.persist.Save(slices.Clone(s.tasks)); err != nil {
		s.logger.Error("save tasks failed", "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
