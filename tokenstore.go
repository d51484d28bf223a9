package rushx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// DefaultStoreVersion is the current token store file format version.
const DefaultStoreVersion = 1

// storedTokens is one app's persisted token pair.
type storedTokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// storeData is the on-disk layout: token pairs keyed by app name, so the
// customer, merchant, rider and admin portals sharing one machine profile
// never clobber each other's session.
type storeData struct {
	Version int                      `json:"version"`
	Apps    map[string]*storedTokens `json:"apps"`
}

// TokenStore persists access/refresh tokens with atomic file writes. It is
// the durable half of the session state; the Session keeps it in lockstep
// with its in-memory tokens.
type TokenStore struct {
	mu    sync.RWMutex
	path  string
	data  *storeData
	dirty bool
}

// NewTokenStore creates or opens a store at the given path. A missing file
// yields an empty store; a missing directory is created with 0700
// permissions.
func NewTokenStore(path string) (*TokenStore, error) {
	store := &TokenStore{
		path: path,
		data: &storeData{
			Version: DefaultStoreVersion,
			Apps:    make(map[string]*storedTokens),
		},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	if err := store.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return store, nil
}

func (s *TokenStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	// Empty file is valid - treat as empty store
	if len(data) == 0 {
		return nil
	}

	var parsed storeData
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreCorrupted, err)
	}

	if parsed.Version > DefaultStoreVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrStoreCorrupted, parsed.Version)
	}

	if parsed.Apps == nil {
		parsed.Apps = make(map[string]*storedTokens)
	}

	s.data = &parsed
	s.dirty = false
	return nil
}

// syncLocked writes store data atomically using the temp file + rename
// pattern. Must be called with the write lock held.
func (s *TokenStore) syncLocked() error {
	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrStorePersist, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write: %v", ErrStorePersist, err)
	}

	// Fsync before rename so a crash never leaves a torn store
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: fsync: %v", ErrStorePersist, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close: %v", ErrStorePersist, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename: %v", ErrStorePersist, err)
	}

	s.dirty = false
	return nil
}

// Path returns the store file path.
func (s *TokenStore) Path() string {
	return s.path
}

// Save persists an app's token pair.
func (s *TokenStore) Save(app string, tokens AuthTokens) error {
	if app == "" {
		return fmt.Errorf("app name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Apps[app] = &storedTokens{
		Access:  tokens.Access,
		Refresh: tokens.Refresh,
	}
	s.dirty = true
	return s.syncLocked()
}

// Load returns an app's token pair, or nil when none is stored.
func (s *TokenStore) Load(app string) *AuthTokens {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.data.Apps[app]
	if !exists || stored.Access == "" {
		return nil
	}
	return &AuthTokens{Access: stored.Access, Refresh: stored.Refresh}
}

// Clear removes an app's token pair. Clearing an absent entry is a no-op.
func (s *TokenStore) Clear(app string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.Apps[app]; !exists {
		return nil
	}
	delete(s.data.Apps, app)
	s.dirty = true
	return s.syncLocked()
}

// Has reports whether an app has stored tokens.
func (s *TokenStore) Has(app string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.data.Apps[app]
	return stored != nil && stored.Access != ""
}
