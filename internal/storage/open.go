// Package storage provides the persistence adapters behind the task store.
package storage

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Backend selects a persistence adapter.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendBolt   Backend = "bolt"
	BackendMemory Backend = "memory"
)

// ParseBackend normalizes s. Empty input means BackendFile.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendFile, nil
	case BackendFile, BackendBolt, BackendMemory:
		return b, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q (expected file, bolt, or memory)", s)
	}
}

// Adapter is a persistence backend the CLI can inspect and close.
type Adapter interface {
	todo.Persistence
	// Inspect returns the stored collection as JSON, or nil when nothing
	// has been stored.
	Inspect() ([]byte, error)
	Describe() string
	Close() error
}

// Settings selects and configures an adapter.
type Settings struct {
	Backend  Backend
	Path     string // tasks file for BackendFile
	Format   Format // empty infers from Path
	BoltPath string
	Bucket   string
	Key      string
}

// Location returns the path the adapter stores data at, or "" for memory.
func (s Settings) Location() string {
	switch s.Backend {
	case BackendBolt:
		return s.BoltPath
	case BackendMemory:
		return ""
	default:
		return s.Path
	}
}

// Open builds the adapter named by s.Backend.
func Open(s Settings, logger *log.Logger) (Adapter, error) {
	switch s.Backend {
	case BackendFile, "":
		return NewFileStore(s.Path, s.Format, logger)
	case BackendBolt:
		return OpenBolt(s.BoltPath, s.Bucket, s.Key, logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}
