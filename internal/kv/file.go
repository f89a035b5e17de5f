package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// fileData represents the JSON file structure.
type fileData struct {
	Version int                        `json:"version"`
	Entries map[string]json.RawMessage `json:"entries"`
}

// FileStore keeps every key in one human-readable JSON document and rewrites
// it atomically on each change. Values must be JSON.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu      sync.RWMutex
	cache   *fileData
	corrupt bool
}

// OpenFileStore loads path, or starts empty if it does not exist.
// A file that cannot be parsed is moved aside on the first write instead of
// being overwritten in place.
func OpenFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		cache:  &fileData{Version: 1, Entries: map[string]json.RawMessage{}},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("state file is corrupt, starting empty")
		s.corrupt = true
		return s, nil
	}
	if fd.Entries == nil {
		fd.Entries = map[string]json.RawMessage{}
	}
	s.cache = &fd
	return s, nil
}

func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.cache.Entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("set %s: %w", key, ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := make(json.RawMessage, len(value))
	copy(clone, value)
	prev, had := s.cache.Entries[key]
	s.cache.Entries[key] = clone
	if err := s.saveLocked(); err != nil {
		s.restoreLocked(key, prev, had)
		return err
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.cache.Entries[key]
	if !ok {
		return nil
	}
	delete(s.cache.Entries, key)
	if err := s.saveLocked(); err != nil {
		s.restoreLocked(key, prev, true)
		return err
	}
	return nil
}

// restoreLocked puts back the cached entry a failed save replaced, so reads
// keep matching the file.
func (s *FileStore) restoreLocked(key string, prev json.RawMessage, had bool) {
	if had {
		s.cache.Entries[key] = prev
		return
	}
	delete(s.cache.Entries, key)
}

func (s *FileStore) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.cache.Entries))
	for k := range s.cache.Entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; every change is already on disk.
func (s *FileStore) Close() error {
	return nil
}

// saveLocked writes the cache to disk (caller must hold write lock).
func (s *FileStore) saveLocked() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	if s.corrupt {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if err := os.Rename(s.path, aside); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("move corrupt state file: %w", err)
		}
		s.logger.Warn().Str("path", aside).Msg("moved corrupt state file aside")
		s.corrupt = false
	}

	return renameio.WriteFile(s.path, data, 0644)
}
