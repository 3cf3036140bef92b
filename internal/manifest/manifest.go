// Package manifest implements the ManifestIndex: the durable map from
// record id to its live (segment, offset, phaseCenter) location, plus the
// segment-to-ids auxiliary index compaction scans use.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/fsutil"
)

// New creates an empty Index. Call Load to populate it from an existing
// manifest file, if one exists.
func New(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, errs.NewManifestError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"manifest path is required",
		)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Index{
		path:  cfg.Path,
		byID:  make(map[string]PatternLocation),
		bySeg: make(map[string]map[string]struct{}),
		log:   log,
	}, nil
}

// Put records (or replaces) the live location for id.
func (idx *Index) Put(loc PatternLocation) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.putLocked(loc)
}

func (idx *Index) putLocked(loc PatternLocation) {
	if old, ok := idx.byID[loc.ID]; ok {
		idx.removeFromSegIndexLocked(old.SegmentName, old.ID)
	}
	idx.byID[loc.ID] = loc
	idx.addToSegIndexLocked(loc.SegmentName, loc.ID)
}

// Get returns the current location of id, if any.
func (idx *Index) Get(id string) (PatternLocation, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.byID[id]
	return loc, ok
}

// Remove deletes id's entry entirely.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if loc, ok := idx.byID[id]; ok {
		idx.removeFromSegIndexLocked(loc.SegmentName, loc.ID)
		delete(idx.byID, id)
	}
}

// Replace repoints id from (oldSeg, oldOff) to (newSeg, newOff, phaseCenter).
// It is a no-op if the current entry disagrees with (oldSeg, oldOff) —
// that disagreement means the id has already been moved (by a previous
// replace during the same scan, or by a concurrent write) and this call is
// stale.
func (idx *Index) Replace(id, oldSeg string, oldOff int64, newSeg string, newOff int64, phaseCenter float64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur, ok := idx.byID[id]
	if !ok || cur.SegmentName != oldSeg || cur.Offset != oldOff {
		return
	}

	idx.putLocked(PatternLocation{ID: id, SegmentName: newSeg, Offset: newOff, PhaseCenter: phaseCenter})
}

// IDsInSegment returns every id currently pointing into segmentName, for
// compaction's scan step.
func (idx *Index) IDsInSegment(segmentName string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	set := idx.bySeg[segmentName]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

func (idx *Index) addToSegIndexLocked(seg, id string) {
	set, ok := idx.bySeg[seg]
	if !ok {
		set = make(map[string]struct{})
		idx.bySeg[seg] = set
	}
	set[id] = struct{}{}
}

func (idx *Index) removeFromSegIndexLocked(seg, id string) {
	set, ok := idx.bySeg[seg]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(idx.bySeg, seg)
	}
}

// snapshot is the on-disk JSON shape of the manifest.
type snapshot struct {
	Locations []PatternLocation `json:"locations"`
}

// Flush persists the manifest: marshal to JSON, write to a temp file in the
// same directory, fsync it, then atomically rename it into place.
func (idx *Index) Flush() error {
	idx.mu.RLock()
	snap := snapshot{Locations: make([]PatternLocation, 0, len(idx.byID))}
	for _, loc := range idx.byID {
		snap.Locations = append(snap.Locations, loc)
	}
	idx.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return errs.NewManifestError(err, errs.ErrInvalidArgument, errs.ErrorCodeInternal, "failed to marshal manifest")
	}

	tmpPath := idx.path + ".tmp"
	if err := fsutil.WriteFileSync(tmpPath, 0644, data); err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to write manifest temp file")
	}

	if err := os.Rename(tmpPath, idx.path); err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to rename manifest into place")
	}

	idx.log.Infow("flushed manifest", "path", idx.path, "entries", len(snap.Locations))
	return nil
}

// Load reads the manifest from disk, replacing the in-memory state. A
// missing file is tolerated and leaves the index empty.
func (idx *Index) Load() error {
	exists, err := fsutil.Exists(idx.path)
	if err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to stat manifest file")
	}
	if !exists {
		idx.log.Infow("no manifest file found, starting empty", "path", idx.path)
		return nil
	}

	data, err := fsutil.ReadFile(idx.path)
	if err != nil {
		return errs.NewManifestError(err, errs.ErrSegmentIO, errs.ErrorCodeIO, "failed to read manifest file")
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return errs.NewManifestError(
			err, errs.ErrCorruptSegment, errs.ErrorCodeManifestCorrupted, "manifest file is not valid JSON",
		)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byID = make(map[string]PatternLocation, len(snap.Locations))
	idx.bySeg = make(map[string]map[string]struct{})
	for _, loc := range snap.Locations {
		idx.byID[loc.ID] = loc
		idx.addToSegIndexLocked(loc.SegmentName, loc.ID)
	}

	idx.log.Infow("loaded manifest", "path", idx.path, "entries", len(snap.Locations))
	return nil
}

// Locations returns a snapshot of every currently tracked location, for
// bootstrapping a shard selector from an existing store at startup.
func (idx *Index) Locations() []PatternLocation {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	locs := make([]PatternLocation, 0, len(idx.byID))
	for _, loc := range idx.byID {
		locs = append(locs, loc)
	}
	return locs
}

// Len returns the number of tracked record ids.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byID)
}

// Dir returns the directory the manifest file lives in, for callers that
// need to construct sibling paths (e.g. the metastore).
func (idx *Index) Dir() string {
	return filepath.Dir(idx.path)
}
