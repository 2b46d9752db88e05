// Package todo holds the task list core: task records, input validation,
// priority derivation, and the filtered view handed to renderers.
//
// A Store owns the tasks of one session. It is constructed from a
// Persistence collaborator and writes the full collection back through it
// after every mutation:
//
//	store, err := todo.NewStore(fileStore, todo.WithRenderer(list))
//	task, err := store.Add("Buy groceries", "2024-01-12")
//	store.SetFilter(todo.FilterUpcoming)
//	err = store.Render()
//
// # Serialized form
//
// Tasks serialize with the field names used by the historical browser
// storage layout:
//
//	[
//	  {
//	    "id": 1,
//	    "text": "Buy groceries",
//	    "date": "2024-01-12",
//	    "completed": false,
//	    "createdAt": "2024-01-10T09:30:00.000Z",
//	    "priority": "medium"
//	  }
//	]
//
// The embedded JSON Schema (tasks.schema.json) describes this document and
// is used by ValidateDocument.
//
// # Priority
//
// Priority is derived once, when the task is created, from the number of
// calendar days between the creation day and the due date:
//
//   - 1 day or less: high
//   - 2 to 7 days: medium
//   - more than 7 days: low
//
// # Filters
//
//   - "all": every task
//   - "today": tasks due today
//   - "upcoming": incomplete tasks due after today
//   - "completed": completed tasks
//
// Unknown filter values behave like "all". Filtered views are always sorted
// by due date, keeping insertion order between tasks due the same day.
package todo
