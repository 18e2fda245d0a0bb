package dataset

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Store memoizes loaded Datasets keyed by source path and modification time.
// Repeated loads of an unchanged file return the cached table; a changed
// mtime or an explicit Invalidate triggers a re-read. The cached Dataset is
// read-only for every consumer, so sharing it across requests needs no
// further locking.
type Store struct {
	mu     sync.RWMutex
	cache  map[string]*cacheEntry
	logger *slog.Logger
}

type cacheEntry struct {
	ds      *Dataset
	modTime time.Time
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cache:  make(map[string]*cacheEntry),
		logger: logger,
	}
}

// Load returns the Dataset for path, reading the file only when it is not
// cached or its modification time changed. A missing source yields an empty
// schema-complete Dataset and is cached like any other result.
func (s *Store) Load(ctx context.Context, path string) (*Dataset, error) {
	modTime := s.statModTime(path)

	s.mu.RLock()
	entry, ok := s.cache[path]
	s.mu.RUnlock()
	if ok && entry.modTime.Equal(modTime) {
		return entry.ds, nil
	}

	ds, err := load(ctx, path, s.logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[path] = &cacheEntry{ds: ds, modTime: modTime}
	s.mu.Unlock()
	return ds, nil
}

// Invalidate drops the cached Dataset for path; the next Load re-reads.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.cache, path)
	s.mu.Unlock()
}

// InvalidateAll empties the cache.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]*cacheEntry)
	s.mu.Unlock()
}

// statModTime resolves the mtime of the first readable candidate. The zero
// time stands in for a missing source, which still cache-hits until the file
// appears.
func (s *Store) statModTime(path string) time.Time {
	for _, cand := range candidates(path) {
		if info, err := os.Stat(cand); err == nil {
			return info.ModTime()
		}
	}
	return time.Time{}
}
