package todo

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"
)

// memPersistence records saves in memory.
type memPersistence struct {
	tasks   []Task
	saves   int
	saveErr error
	loadErr error
}

func (m *memPersistence) Load() ([]Task, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return slices.Clone(m.tasks), nil
}

func (m *memPersistence) Save(tasks []Task) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks = slices.Clone(tasks)
	return nil
}

type recordingRenderer struct {
	filter Filter
	tasks  []Task
	calls  int
}

func (r *recordingRenderer) Render(f Filter, tasks []Task) error {
	r.calls++
	r.filter = f
	r.tasks = tasks
	return nil
}

var testNow = time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)

func testClock() Clock {
	return ClockFunc(func() time.Time { return testNow })
}

func date(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func newTestStore(t *testing.T, p *memPersistence, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(testClock())}, opts...)
	s, err := NewStore(p, opts...)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func ids(tasks []Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestComputePriority(t *testing.T) {
	today := NewDate(2024, time.January, 10)
	tests := []struct {
		due  string
		want Priority
	}{
		{"2024-01-09", PriorityHigh},
		{"2024-01-10", PriorityHigh},
		{"2024-01-11", PriorityHigh},
		{"2024-01-12", PriorityMedium},
		{"2024-01-17", PriorityMedium},
		{"2024-01-18", PriorityLow},
		{"2024-03-01", PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.due, func(t *testing.T) {
			if got := ComputePriority(date(t, tt.due), today); got != tt.want {
				t.Errorf("ComputePriority(%s) = %s, want %s", tt.due, got, tt.want)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	t.Run("nil persistence", func(t *testing.T) {
		if _, err := NewStore(nil); err == nil {
			t.Error("expected error for nil persistence")
		}
	})

	t.Run("load error", func(t *testing.T) {
		p := &memPersistence{loadErr: errors.New("boom")}
		if _, err := NewStore(p); err == nil || !strings.Contains(err.Error(), "boom") {
			t.Errorf("expected load error, got %v", err)
		}
	})

	t.Run("empty starts at id 1", func(t *testing.T) {
		s := newTestStore(t, &memPersistence{})
		if s.NextID() != 1 {
			t.Errorf("NextID = %d, want 1", s.NextID())
		}
		if s.Filter() != FilterAll {
			t.Errorf("Filter = %q, want all", s.Filter())
		}
	})

	t.Run("next id after reload", func(t *testing.T) {
		p := &memPersistence{tasks: []Task{{ID: 2}, {ID: 5}, {ID: 3}}}
		s := newTestStore(t, p)
		if s.NextID() != 6 {
			t.Errorf("NextID = %d, want 6", s.NextID())
		}
		task, err := s.Add("Water plants", "2024-01-12")
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if task.ID != 6 {
			t.Errorf("ID = %d, want 6", task.ID)
		}
	})

	t.Run("initial filter option", func(t *testing.T) {
		s := newTestStore(t, &memPersistence{}, WithFilter(FilterCompleted))
		if s.Filter() != FilterCompleted {
			t.Errorf("Filter = %q, want completed", s.Filter())
		}
	})
}

func TestAdd(t *testing.T) {
	p := &memPersistence{}
	s := newTestStore(t, p)

	task, err := s.Add("  Buy groceries  ", "2024-01-12")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	want := Task{
		ID:        1,
		Text:      "Buy groceries",
		Date:      NewDate(2024, time.January, 12),
		Completed: false,
		CreatedAt: testNow,
		Priority:  PriorityMedium,
	}
	if !reflect.DeepEqual(task, want) {
		t.Errorf("Add = %+v, want %+v", task, want)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if p.saves != 1 || len(p.tasks) != 1 {
		t.Errorf("saves = %d, persisted = %d; want 1, 1", p.saves, len(p.tasks))
	}

	second, err := s.Add("Call mom", "2024-01-10")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if second.ID != 2 {
		t.Errorf("second ID = %d, want 2", second.ID)
	}
	if second.Priority != PriorityHigh {
		t.Errorf("second Priority = %s, want high", second.Priority)
	}
}

func TestAddRejects(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		date     string
		wantErrs []error
	}{
		{"too short", "ab", "2024-01-12", []error{ErrTooShort}},
		{"too short after trim", "  a  ", "2024-01-12", []error{ErrTooShort}},
		{"missing date", "Walk the dog", "", []error{ErrMissing}},
		{"past date", "Walk the dog", "2024-01-09", []error{ErrPastDate}},
		{"malformed date", "Walk the dog", "01/12/2024", []error{ErrInvalidDate}},
		{"both fields", "ab", "2023-12-31", []error{ErrTooShort, ErrPastDate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &memPersistence{}
			s := newTestStore(t, p)

			_, err := s.Add(tt.text, tt.date)
			var addErr *AddError
			if !errors.As(err, &addErr) {
				t.Fatalf("expected *AddError, got %v", err)
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("expected errors.Is(%v, %v)", err, want)
				}
			}
			if s.Len() != 0 || p.saves != 0 {
				t.Errorf("store mutated: Len = %d, saves = %d", s.Len(), p.saves)
			}
			if s.NextID() != 1 {
				t.Errorf("NextID advanced to %d", s.NextID())
			}
		})
	}
}

func TestAddEmptyTextIsNeutral(t *testing.T) {
	s := newTestStore(t, &memPersistence{})

	res := s.ValidateTaskText("   ")
	if !res.Neutral() || res.Valid || res.Message() != "" {
		t.Errorf("ValidateTaskText(blank) = %+v, want neutral", res)
	}

	_, err := s.Add("", "2024-01-12")
	var addErr *AddError
	if !errors.As(err, &addErr) {
		t.Fatalf("expected *AddError, got %v", err)
	}
	if !addErr.Text.Neutral() {
		t.Errorf("Text result = %+v, want neutral", addErr.Text)
	}
	if !addErr.Date.Valid {
		t.Errorf("Date result = %+v, want valid", addErr.Date)
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("Error() = %q, want mention of empty text", err.Error())
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestDuplicateActive(t *testing.T) {
	p := &memPersistence{}
	s := newTestStore(t, p)

	first, err := s.Add("Buy milk", "2024-01-12")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if res := s.ValidateTaskText("  BUY MILK "); res.Err == nil || res.Err.Kind != KindDuplicateActive {
		t.Errorf("ValidateTaskText = %+v, want duplicate_active", res)
	}
	if _, err := s.Add("buy milk", "2024-01-20"); !errors.Is(err, ErrDuplicateActive) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	if found, err := s.Toggle(first.ID); !found || err != nil {
		t.Fatalf("Toggle = %v, %v", found, err)
	}
	if res := s.ValidateTaskText("buy milk"); !res.Valid {
		t.Errorf("ValidateTaskText after completion = %+v, want valid", res)
	}
	if _, err := s.Add("buy milk", "2024-01-20"); err != nil {
		t.Fatalf("Add after completion failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestValidateDueDate(t *testing.T) {
	s := newTestStore(t, &memPersistence{})
	tests := []struct {
		input string
		kind  ValidationKind
	}{
		{"", KindMissing},
		{"   ", KindMissing},
		{"2024-01-09", KindPastDate},
		{"not a date", KindInvalid},
		{"2024-01-10", ""},
		{"2030-06-01", ""},
	}

	for _, tt := range tests {
		res := s.ValidateDueDate(tt.input)
		if tt.kind == "" {
			if !res.Valid {
				t.Errorf("ValidateDueDate(%q) = %+v, want valid", tt.input, res)
			}
			continue
		}
		if res.Valid || res.Err == nil || res.Err.Kind != tt.kind || res.Err.Field != FieldDate {
			t.Errorf("ValidateDueDate(%q) = %+v, want %s", tt.input, res, tt.kind)
		}
	}
}

func TestToggle(t *testing.T) {
	p := &memPersistence{}
	s := newTestStore(t, p)
	task, _ := s.Add("Read a book", "2024-01-15")

	found, err := s.Toggle(task.ID)
	if !found || err != nil {
		t.Fatalf("Toggle = %v, %v", found, err)
	}
	got, _ := s.Get(task.ID)
	if !got.Completed || !p.tasks[0].Completed {
		t.Errorf("expected completed in memory and persisted")
	}

	found, err = s.Toggle(task.ID)
	if !found || err != nil {
		t.Fatalf("second Toggle = %v, %v", found, err)
	}
	got, _ = s.Get(task.ID)
	if !reflect.DeepEqual(got, task) {
		t.Errorf("double toggle = %+v, want %+v", got, task)
	}

	saves := p.saves
	found, err = s.Toggle(99)
	if found || err != nil {
		t.Errorf("Toggle(99) = %v, %v; want false, nil", found, err)
	}
	if p.saves != saves {
		t.Errorf("Toggle of missing id saved")
	}
}

func TestDelete(t *testing.T) {
	p := &memPersistence{}
	s := newTestStore(t, p)
	a, _ := s.Add("Task one", "2024-01-11")
	b, _ := s.Add("Task two", "2024-01-12")

	before := s.Tasks()
	saves := p.saves
	found, err := s.Delete(42)
	if found || err != nil {
		t.Errorf("Delete(42) = %v, %v; want false, nil", found, err)
	}
	if !reflect.DeepEqual(s.Tasks(), before) || p.saves != saves {
		t.Errorf("Delete of missing id changed the store")
	}

	found, err = s.Delete(b.ID)
	if !found || err != nil {
		t.Fatalf("Delete = %v, %v", found, err)
	}
	if got := ids(s.Tasks()); !reflect.DeepEqual(got, []int{a.ID}) {
		t.Errorf("ids after delete = %v", got)
	}
	if got := ids(p.tasks); !reflect.DeepEqual(got, []int{a.ID}) {
		t.Errorf("persisted ids after delete = %v", got)
	}

	c, err := s.Add("Task three", "2024-01-13")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if c.ID != 3 {
		t.Errorf("id reused: got %d, want 3", c.ID)
	}
}

func filterFixture(t *testing.T) []Task {
	return []Task{
		{ID: 1, Text: "one", Date: date(t, "2024-01-15")},
		{ID: 2, Text: "two", Date: date(t, "2024-01-10")},
		{ID: 3, Text: "three", Date: date(t, "2024-01-12"), Completed: true},
		{ID: 4, Text: "four", Date: date(t, "2024-01-10"), Completed: true},
		{ID: 5, Text: "five", Date: date(t, "2024-01-08")},
		{ID: 6, Text: "six", Date: date(t, "2024-01-12")},
	}
}

func TestFiltered(t *testing.T) {
	tests := []struct {
		filter Filter
		want   []int
	}{
		{FilterAll, []int{5, 2, 4, 3, 6, 1}},
		{FilterToday, []int{2, 4}},
		{FilterUpcoming, []int{6, 1}},
		{FilterCompleted, []int{4, 3}},
		{Filter("bogus"), []int{5, 2, 4, 3, 6, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			s := newTestStore(t, &memPersistence{tasks: filterFixture(t)})
			s.SetFilter(tt.filter)

			got := ids(s.Filtered())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filtered(%s) = %v, want %v", tt.filter, got, tt.want)
			}
			if stored := ids(s.Tasks()); !reflect.DeepEqual(stored, []int{1, 2, 3, 4, 5, 6}) {
				t.Errorf("stored order changed: %v", stored)
			}
		})
	}
}

func TestFilteredEmpty(t *testing.T) {
	s := newTestStore(t, &memPersistence{})
	s.SetFilter(FilterCompleted)

	got := s.Filtered()
	if got == nil || len(got) != 0 {
		t.Errorf("Filtered = %#v, want empty non-nil slice", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input  string
		want   Filter
		wantOK bool
	}{
		{"all", FilterAll, true},
		{" Today ", FilterToday, true},
		{"UPCOMING", FilterUpcoming, true},
		{"completed", FilterCompleted, true},
		{"", FilterAll, true},
		{"overdue", FilterAll, false},
	}

	for _, tt := range tests {
		got, ok := ParseFilter(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseFilter(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	p := &memPersistence{saveErr: errors.New("quota exceeded")}
	s := newTestStore(t, p)

	task, err := s.Add("Pay rent", "2024-01-31")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if task.ID != 1 || s.Len() != 1 {
		t.Errorf("task = %+v, Len = %d; want the task kept in memory", task, s.Len())
	}

	found, err := s.Toggle(task.ID)
	if !found || !errors.Is(err, ErrPersist) {
		t.Errorf("Toggle = %v, %v; want true, ErrPersist", found, err)
	}
}

func TestRender(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStore(t, &memPersistence{tasks: filterFixture(t)}, WithRenderer(r))
	s.SetFilter(FilterToday)

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.calls != 1 || r.filter != FilterToday {
		t.Errorf("renderer calls = %d, filter = %q", r.calls, r.filter)
	}
	if got := ids(r.tasks); !reflect.DeepEqual(got, []int{2, 4}) {
		t.Errorf("rendered ids = %v", got)
	}

	noRenderer := newTestStore(t, &memPersistence{})
	if err := noRenderer.Render(); err != nil {
		t.Errorf("Render without renderer = %v", err)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t, &memPersistence{tasks: filterFixture(t)})
	got := s.Stats()
	want := Stats{Total: 6, Completed: 2, Pending: 4, DueToday: 1, Overdue: 1}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestAddErrorMessage(t *testing.T) {
	s := newTestStore(t, &memPersistence{})
	_, err := s.Add("ab", "2024-01-01")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"text: task must be at least 3 characters long", "date: due date cannot be in the past"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
