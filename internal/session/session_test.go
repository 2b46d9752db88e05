package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
)

var testClock = todo.ClockFunc(func() time.Time {
	return time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
})

func newStore(t *testing.T, p todo.Persistence) *todo.Store {
	t.Helper()
	s, err := todo.NewStore(p, todo.WithClock(testClock))
	require.NoError(t, err)
	return s
}

func TestSessionJournalsChanges(t *testing.T) {
	j, err := logging.NewJournal(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	s := New(context.Background(), newStore(t, storage.NewMemoryStore()), WithJournal(j))

	task, err := s.Add("Buy groceries", "2024-01-12")
	require.NoError(t, err)
	_, err = s.Add("no", "2024-01-12")
	require.Error(t, err)

	ok, err := s.Toggle(task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Toggle(99)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(task.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, j.Close())

	entries, err := logging.ReadJournal(j.LogPath)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, logging.EventAdd, entries[0].Event)
	assert.Equal(t, "Buy groceries", entries[0].Text)
	assert.Equal(t, "2024-01-12", entries[0].Date)
	assert.Equal(t, logging.EventToggle, entries[1].Event)
	require.NotNil(t, entries[1].Completed)
	assert.True(t, *entries[1].Completed)
	assert.Equal(t, logging.EventDelete, entries[2].Event)
	assert.Equal(t, "Buy groceries", entries[2].Text)
}

func TestSessionRunsHook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook script is POSIX shell")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "calls.txt")
	hook := filepath.Join(dir, "hook.sh")
	script := "#!/bin/sh\necho \"$1 $2 $3\" >> " + out + "\n"
	require.NoError(t, os.WriteFile(hook, []byte(script), 0o755))

	s := New(context.Background(), newStore(t, storage.NewMemoryStore()),
		WithHook(hook, "/data/tasks.json", dir))

	task, err := s.Add("Buy groceries", "2024-01-12")
	require.NoError(t, err)
	_, err = s.Toggle(task.ID)
	require.NoError(t, err)
	_, err = s.Delete(task.ID)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"add 1 /data/tasks.json",
		"toggle 1 /data/tasks.json",
		"delete 1 /data/tasks.json",
	}, lines)
}

func TestSessionHookFailureDoesNotFailChange(t *testing.T) {
	s := New(context.Background(), newStore(t, storage.NewMemoryStore()),
		WithHook(filepath.Join(t.TempDir(), "missing-hook"), "", ""))

	task, err := s.Add("Buy groceries", "2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, 1, task.ID)
	assert.Equal(t, 1, s.Len())
}

type failingPersistence struct{}

func (failingPersistence) Load() ([]todo.Task, error) { return nil, nil }
func (failingPersistence) Save([]todo.Task) error     { return errors.New("disk full") }

func TestSessionSkipsSideEffectsOnPersistFailure(t *testing.T) {
	j, err := logging.NewJournal(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	s := New(context.Background(), newStore(t, failingPersistence{}), WithJournal(j))
	_, err = s.Add("Buy groceries", "2024-01-12")
	require.ErrorIs(t, err, todo.ErrPersist)
	require.NoError(t, j.Close())

	_, err = os.Stat(j.LogPath)
	assert.True(t, os.IsNotExist(err), "journal written for a failed change")
}
