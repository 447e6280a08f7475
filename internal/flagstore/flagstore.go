// Package flagstore persists the verified-user key set to a flat YAML file.
// Every mutation rewrites the file atomically.
package flagstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

const fileVersion = 1

type document struct {
	Version int      `yaml:"version"`
	Keys    []string `yaml:"keys"`
}

// Store is a durable boolean flag per key. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	keys map[string]struct{}
}

// Open loads the key set at path. A missing file is an empty set; the file
// is created on the first mutation.
func Open(path string) (*Store, error) {
	s := &Store{path: path, keys: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flag file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse flag file %s: %w", path, err)
	}
	for _, key := range doc.Keys {
		s.keys[key] = struct{}{}
	}
	return s, nil
}

// IsFlagged reports whether key is in the set.
func (s *Store) IsFlagged(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// SetFlag adds or removes key and persists the new set.
func (s *Store) SetFlag(key string, flagged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if flagged {
		s.keys[key] = struct{}{}
	} else {
		delete(s.keys, key)
	}
	return s.writeLocked()
}

// List returns the flagged keys in sorted order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// writeLocked rewrites the file via temp file + rename so readers never see
// a partial document.
func (s *Store) writeLocked() error {
	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	data, err := yaml.Marshal(document{Version: fileVersion, Keys: keys})
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".flags-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp flag file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace flag file: %w", err)
	}
	return nil
}
