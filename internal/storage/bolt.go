package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"

	"github.com/nibzard/tasklist-go/internal/todo"
)

const (
	// DefaultBucket holds the task list key.
	DefaultBucket = "tasklist"
	// DefaultKey is the key the whole task array is stored under.
	DefaultKey = "colorfulTasks"
)

// BoltStore keeps the task array as one JSON value in a BoltDB bucket,
// mirroring a key/value store such as browser local storage.
type BoltStore struct {
	db     *bolt.DB
	path   string
	bucket []byte
	key    []byte
	logger *log.Logger
}

// OpenBolt opens (or creates) the database at path and ensures the bucket
// exists. Empty bucket or key fall back to the defaults.
func OpenBolt(path, bucket, key string, logger *log.Logger) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("bolt store: path is empty")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bolt store: create dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt store: open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt store: create bucket: %w", err)
	}

	return &BoltStore{
		db:     db,
		path:   path,
		bucket: []byte(bucket),
		key:    []byte(key),
		logger: logger,
	}, nil
}

// Load reads the task array. A missing key yields nil and a malformed value
// is logged and treated as empty.
func (s *BoltStore) Load() ([]todo.Task, error) {
	data, err := s.value()
	if err != nil || data == nil {
		return nil, err
	}
	tasks, err := Decode(FormatJSON, data)
	if err != nil {
		s.logger.Warn("ignoring malformed stored tasks", "key", string(s.key), "err", err)
		return nil, nil
	}
	return tasks, nil
}

// Save replaces the stored task array.
func (s *BoltStore) Save(tasks []todo.Task) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(s.key, payload)
	})
	if err != nil {
		return fmt.Errorf("bolt store: put %s: %w", s.key, err)
	}
	s.logger.Debug("tasks saved", "db", s.path, "key", string(s.key), "tasks", len(tasks))
	return nil
}

// Inspect returns the raw stored JSON, or nil when the key is unset.
func (s *BoltStore) Inspect() ([]byte, error) {
	return s.value()
}

// Describe names the store for diagnostics.
func (s *BoltStore) Describe() string {
	return fmt.Sprintf("bolt %s (bucket %s, key %s)", s.path, s.bucket, s.key)
}

// Close closes the database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) value() ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get(s.key); v != nil {
			data = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt store: get %s: %w", s.key, err)
	}
	return data, nil
}
