package tracker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sitepulse/api/utils"
)

// IdentityStore persists the session identifier of one browsing context.
// An empty id with a nil error means no identifier has been stored yet.
type IdentityStore interface {
	SessionID() (string, error)
	SetSessionID(id string) error
	ClearSessionID() error
}

// IDGenerator produces new random session identifiers.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string { return f() }

// DefaultIDGenerator issues random UUIDs.
var DefaultIDGenerator IDGenerator = IDGeneratorFunc(utils.NewSessionID)

// MemoryIdentityStore keeps the identifier in process memory only.
type MemoryIdentityStore struct {
	mu sync.Mutex
	id string
}

func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{}
}

func (s *MemoryIdentityStore) SessionID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemoryIdentityStore) SetSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemoryIdentityStore) ClearSessionID() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}

// FileIdentityStore keeps the identifier in a single file so it survives
// restarts of the embedding process.
type FileIdentityStore struct {
	path string
}

func NewFileIdentityStore(path string) *FileIdentityStore {
	return &FileIdentityStore{path: path}
}

func (s *FileIdentityStore) SessionID() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session id: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileIdentityStore) SetSessionID(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(id), 0o600); err != nil {
		return fmt.Errorf("failed to write session id: %w", err)
	}
	return nil
}

func (s *FileIdentityStore) ClearSessionID() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session id: %w", err)
	}
	return nil
}
