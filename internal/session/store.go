// ABOUTME: Persisted session record kept in the user config directory
// ABOUTME: One JSON document holds both user and token so writes are all-or-nothing

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/kabar-app/kabar/internal/client"
)

// ErrNoSession is returned by Load when no valid session is persisted
var ErrNoSession = errors.New("no persisted session")

// Record is the persisted session
type Record struct {
	User  *client.User `json:"user"`
	Token string       `json:"token"`
}

// Valid reports whether both halves of the record are present
func (r Record) Valid() bool {
	return r.User != nil && r.Token != ""
}

// Store persists a session record
type Store interface {
	Load() (*Record, error)
	Save(Record) error
	Clear() error
}

// FileStore keeps the session in <dir>/session.json
type FileStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, "session.json")
}

// Load reads the record. A missing file yields ErrNoSession; an unreadable
// or half-populated record is removed and also yields ErrNoSession.
func (s *FileStore) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil || !rec.Valid() {
		s.logger.Warn("Discarding corrupt session record", "path", s.Path(), "error", err)
		if rmErr := os.Remove(s.Path()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove corrupt session: %w", rmErr)
		}
		return nil, ErrNoSession
	}
	return &rec, nil
}

// Save writes the record atomically via a temp file and rename
func (s *FileStore) Save(rec Record) error {
	if !rec.Valid() {
		return errors.New("session record requires both user and token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set session permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in memory
type MemoryStore struct {
	mu  sync.Mutex
	rec *Record
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return nil, ErrNoSession
	}
	rec := *m.rec
	return &rec, nil
}

func (m *MemoryStore) Save(rec Record) error {
	if !rec.Valid() {
		return errors.New("session record requires both user and token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &rec
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}
