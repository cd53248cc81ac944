package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/abdidvp/plugincheck/internal/domain"
)

const cacheVersion = 2

// fileFormat is the on-disk layout of results.json.
type fileFormat struct {
	Version int                                `json:"version"`
	Entries map[string]domain.ValidationResult `json:"entries"`
}

// Store is a file-backed implementation of domain.ResultCache. Entries are
// read once by Load, served from memory, and written back by Flush.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]domain.ValidationResult
	dirty   bool
}

// New creates a store for the plugin at pluginRoot. Nothing is read until Load.
func New(pluginRoot string) *Store {
	return &Store{
		path:    cachePath(pluginRoot),
		entries: map[string]domain.ValidationResult{},
	}
}

// Path returns the cache file location.
func (s *Store) Path() string { return s.path }

// Load reads the cache file. A missing file is not an error; a file written
// by another cache version is deleted, since none of its keys can match.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no cache is not an error
		}
		return err
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if f.Version != cacheVersion {
		return s.Invalidate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range f.Entries {
		s.entries[k] = v
	}
	return nil
}

func (s *Store) Get(key domain.CacheKey) (domain.ValidationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.entries[key.String()]
	return res, ok
}

func (s *Store) Put(key domain.CacheKey, result domain.ValidationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = result
	s.dirty = true
}

// Len reports the number of cached results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Flush writes the cache to disk, creating directories as needed. A store
// with no new entries is left alone.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileFormat{Version: cacheVersion, Entries: s.entries}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Invalidate drops every entry and removes the cache file.
func (s *Store) Invalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]domain.ValidationResult{}
	s.dirty = false
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cachePath(pluginRoot string) string {
	return filepath.Join(pluginRoot, ".plugincheck", "cache", "results.json")
}
