package todo

import (
	"fmt"
	"testing"
)

func benchTasks(n int) []Task {
	today := Today(testClock())
	tasks := make([]Task, 0, n)
	for i := 1; i <= n; i++ {
		tasks = append(tasks, Task{
			ID:        i,
			Text:      fmt.Sprintf("Task %d", i),
			Date:      today.AddDays((i * 7) % 30),
			Completed: i%4 == 0,
			Priority:  PriorityMedium,
		})
	}
	return tasks
}

// BenchmarkFiltered benchmarks filtering and sorting 1000 tasks.
func BenchmarkFiltered(b *testing.B) {
	for _, f := range Filters() {
		b.Run(string(f), func(b *testing.B) {
			s, err := NewStore(&memPersistence{tasks: benchTasks(1000)}, WithClock(testClock()))
			if err != nil {
				b.Fatalf("NewStore failed: %v", err)
			}
			s.SetFilter(f)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = s.Filtered()
			}
		})
	}
}

// BenchmarkValidateTaskText benchmarks the duplicate scan over 1000 tasks.
func BenchmarkValidateTaskText(b *testing.B) {
	s, err := NewStore(&memPersistence{tasks: benchTasks(1000)}, WithClock(testClock()))
	if err != nil {
		b.Fatalf("NewStore failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.ValidateTaskText("a task that does not exist")
	}
}
