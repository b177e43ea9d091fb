// Package session persists the signed-in user's credentials across runs.
// The backend issues no tokens, so the stored secret is the password itself;
// the store seals it at rest and exposes it only through the Store interface.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/leaflens/leaflens/internal/models"
)

const (
	sessionFile = "session.bin"
	keyFile     = "session.key"
)

// Store is the durable credential cache injected into the auth controller
// and every component that issues authenticated requests.
type Store interface {
	// Get returns the cached session, if any.
	Get() (models.Session, bool)
	// Set replaces the cached session and persists it.
	Set(models.Session) error
	// Clear drops the cached session and removes it from disk.
	Clear() error
}

// FileStore keeps the session sealed in a file under the config directory.
type FileStore struct {
	mu     sync.Mutex
	path   string
	sealFn func([]byte) ([]byte, error)
	openFn func([]byte) ([]byte, error)
	cached *models.Session
}

// NewFileStore opens (or initializes) the store under dir. A session already
// on disk is loaded eagerly; a sealed blob that no longer decrypts is
// discarded rather than surfaced, since a fresh login recreates it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	key, err := loadOrCreateKey(filepath.Join(dir, keyFile))
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	s := &FileStore{
		path:   filepath.Join(dir, sessionFile),
		sealFn: func(plain []byte) ([]byte, error) { return seal(aead, plain) },
		openFn: func(sealed []byte) ([]byte, error) { return open(aead, sealed) },
	}
	s.load()
	return s, nil
}

// load reads and unseals the session file if present. Unreadable or
// undecryptable files are treated as absent.
func (s *FileStore) load() {
	sealed, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	plain, err := s.openFn(sealed)
	if err != nil {
		_ = os.Remove(s.path)
		return
	}
	var sess models.Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		_ = os.Remove(s.path)
		return
	}
	s.cached = &sess
}

// Get returns the cached session, if any.
func (s *FileStore) Get() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		return models.Session{}, false
	}
	return *s.cached, true
}

// Set replaces the cached session and writes it sealed to disk.
func (s *FileStore) Set(sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plain, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	sealed, err := s.sealFn(plain)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, sealed, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.cached = &sess
	return nil
}

// Clear drops the cached session and removes the file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
