// Package metastore implements the metadata side-store: a durable
// key -> arbitrary-map store for the caller-supplied metadata that
// accompanies each inserted pattern (tags, source, anything beyond the
// pattern itself). It is deliberately simple relative to the manifest: no
// auxiliary indices, no compaction, just a JSON snapshot under the same
// write-temp/fsync/rename discipline.
package metastore

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/fsutil"
)

// Store is the key -> map[string]any metadata side-store.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]map[string]any
	log  *zap.SugaredLogger
}

// Config configures New.
type Config struct {
	Path   string
	Logger *zap.SugaredLogger
}

// New creates an empty Store. Call Load to populate it from disk.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errs.NewManifestError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"metastore path is required",
		)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Store{path: cfg.Path, data: make(map[string]map[string]any), log: log}, nil
}

// Put records meta under key, replacing any existing entry.
func (s *Store) Put(key string, meta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = meta
}

// Get returns the metadata stored under key, if any.
func (s *Store) Get(key string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.data[key]
	return meta, ok
}

// Remove deletes key's entry.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Flush persists the store: marshal to JSON, write to a temp file, fsync,
// then atomically rename into place.
func (s *Store) Flush() error {
	s.mu.RLock()
	snapshot := make(map[string]map[string]any, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errs.NewManifestError(err, errs.ErrInvalidArgument, errs.ErrorCodeInternal, "failed to marshal metastore")
	}

	tmpPath := s.path + ".tmp"
	if err := fsutil.WriteFileSync(tmpPath, 0644, data); err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to write metastore temp file")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to rename metastore into place")
	}

	return nil
}

// Load reads the store from disk, replacing in-memory state. A missing
// file is tolerated and leaves the store empty.
func (s *Store) Load() error {
	exists, err := fsutil.Exists(s.path)
	if err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to stat metastore file")
	}
	if !exists {
		return nil
	}

	raw, err := fsutil.ReadFile(s.path)
	if err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to read metastore file")
	}

	var snapshot map[string]map[string]any
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return errs.NewManifestError(err, errs.ErrCorruptSegment, errs.ErrorCodeManifestCorrupted, "metastore file is not valid JSON")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snapshot
	return nil
}
