package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// FileStore persists tasks to a single file guarded by an advisory lock.
type FileStore struct {
	path   string
	format Format
	lock   *flock.Flock
	logger *log.Logger
}

// NewFileStore returns a store for path. When format is empty it is inferred
// from the file extension.
func NewFileStore(path string, format Format, logger *log.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store: path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("file store: resolve %s: %w", path, err)
	}
	if format == "" {
		format = FormatFromPath(abs)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileStore{
		path:   abs,
		format: format,
		lock:   flock.New(abs + ".lock"),
		logger: logger,
	}, nil
}

// Path returns the absolute path of the tasks file.
func (s *FileStore) Path() string { return s.path }

// Format returns the serialization format.
func (s *FileStore) Format() Format { return s.format }

// Load reads the tasks file. A missing file yields nil. Malformed content is
// logged and treated as an empty list.
func (s *FileStore) Load() ([]todo.Task, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	tasks, err := Decode(s.format, data)
	if err != nil {
		s.logger.Warn("ignoring malformed tasks file", "path", s.path, "err", err)
		return nil, nil
	}
	return tasks, nil
}

// Save replaces the tasks file with tasks.
func (s *FileStore) Save(tasks []todo.Task) error {
	data, err := Encode(s.format, tasks)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create tasks dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer s.unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}
	s.logger.Debug("tasks saved", "path", s.path, "tasks", len(tasks))
	return nil
}

// Inspect returns the stored document converted to JSON, or nil when nothing
// is stored.
func (s *FileStore) Inspect() ([]byte, error) {
	data, err := s.read()
	if err != nil || data == nil {
		return nil, err
	}
	return ToJSON(s.format, data)
}

// Describe names the store for diagnostics.
func (s *FileStore) Describe() string {
	return fmt.Sprintf("file %s (%s)", s.path, s.format)
}

// Close releases the lock file handle.
func (s *FileStore) Close() error {
	return s.lock.Close()
}

func (s *FileStore) read() ([]byte, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create tasks dir: %w", err)
	}
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer s.unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) unlock() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("unlock tasks file", "path", s.path, "err", err)
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
