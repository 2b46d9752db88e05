// Package session wires a task store to the side effects of a change: the
// activity journal and the post-change hook.
package session

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/hooks"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// Option configures a Session.
type Option func(*Session)

// WithJournal records every successful change to j.
func WithJournal(j *logging.Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithHook runs command after every successful change. tasksFile is passed
// to the hook as its third argument.
func WithHook(command, tasksFile, workDir string) Option {
	return func(s *Session) {
		s.hook.Command = command
		s.hook.TasksFile = tasksFile
		s.hook.WorkDir = workDir
	}
}

// WithHookOutput redirects hook stdout and stderr.
func WithHookOutput(stdout, stderr io.Writer) Option {
	return func(s *Session) {
		s.hook.Stdout = stdout
		s.hook.Stderr = stderr
	}
}

// WithLogger sets the logger for hook and journal failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is a todo.Store whose mutations also feed the journal and hook.
// Journal and hook failures are logged and never fail the mutation.
type Session struct {
	*todo.Store

	ctx     context.Context
	journal *logging.Journal
	hook    hooks.Options
	logger  *log.Logger
}

// New wraps store. ctx bounds hook execution.
func New(ctx context.Context, store *todo.Store, opts ...Option) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Session{
		Store:  store,
		ctx:    ctx,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add adds a task and reports the change.
func (s *Session) Add(text, dateStr string) (todo.Task, error) {
	task, err := s.Store.Add(text, dateStr)
	if err != nil {
		return task, err
	}
	s.changed(logging.Entry{
		Event:  logging.EventAdd,
		TaskID: task.ID,
		Text:   task.Text,
		Date:   task.Date.String(),
	})
	return task, nil
}

// Toggle flips a task and reports the change.
func (s *Session) Toggle(id int) (bool, error) {
	ok, err := s.Store.Toggle(id)
	if !ok || err != nil {
		return ok, err
	}
	task, _ := s.Store.Get(id)
	completed := task.Completed
	s.changed(logging.Entry{
		Event:     logging.EventToggle,
		TaskID:    id,
		Text:      task.Text,
		Completed: &completed,
	})
	return true, nil
}

// Delete removes a task and reports the change.
func (s *Session) Delete(id int) (bool, error) {
	task, _ := s.Store.Get(id)
	ok, err := s.Store.Delete(id)
	if !ok || err != nil {
		return ok, err
	}
	s.changed(logging.Entry{
		Event:  logging.EventDelete,
		TaskID: id,
		Text:   task.Text,
	})
	return true, nil
}

func (s *Session) changed(e logging.Entry) {
	if err := s.journal.Record(e); err != nil {
		s.logger.Warn("journal write failed", "event", e.Event, "id", e.TaskID, "err", err)
	}

	if s.hook.Command == "" {
		return
	}
	opts := s.hook
	opts.Event = e.Event
	opts.TaskID = e.TaskID
	result, err := hooks.Invoke(s.ctx, opts)
	if err != nil {
		s.logger.Warn("hook failed", "event", e.Event, "id", e.TaskID, "exit_code", result.ExitCode, "err", err)
		return
	}
	s.logger.Debug("hook ran", "event", e.Event, "id", e.TaskID)
}
