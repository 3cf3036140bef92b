// Package engine composes the shard selector, manifest, phase segment
// groups, and resonance kernel into the store's insert/query/delete
// operations.
package engine

import (
	"encoding/hex"
	stdErrors "errors"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/internal/kernel"
	"github.com/resonancedb/resonancedb/internal/manifest"
	"github.com/resonancedb/resonancedb/internal/metastore"
	"github.com/resonancedb/resonancedb/internal/phasegroup"
	"github.com/resonancedb/resonancedb/internal/segment"
	"github.com/resonancedb/resonancedb/internal/shard"
	"github.com/resonancedb/resonancedb/internal/trace"
	"github.com/resonancedb/resonancedb/pkg/checksum"
	"github.com/resonancedb/resonancedb/pkg/config"
	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/fsutil"
	"github.com/resonancedb/resonancedb/pkg/waveform"
)

// ErrEngineClosed is returned when an operation is attempted on a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// New builds an Engine: it creates the data/segment directories, loads the
// manifest and metadata side-store from disk (tolerant of a fresh store),
// and wires the shard selector, kernel, classifier, and compactor.
func New(cfg Config) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	sink := cfg.Sink
	if sink == nil {
		sink = trace.Noop{}
	}

	segmentDir := filepath.Join(cfg.Options.DataDir, cfg.Options.SegmentOptions.Directory)
	if err := fsutil.CreateDir(segmentDir, 0755, true); err != nil {
		return nil, errs.ClassifySegmentIOError(err, segmentDir)
	}

	if err := cleanupStaleTmpFiles(segmentDir); err != nil {
		log.Warnw("failed to clean up stale tmp-merged files at startup", "error", err)
	}

	manifestIdx, err := manifest.New(manifest.Config{
		Path:   filepath.Join(cfg.Options.DataDir, "manifest.json"),
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	if err := manifestIdx.Load(); err != nil {
		return nil, err
	}

	metaStore, err := metastore.New(metastore.Config{
		Path:   filepath.Join(cfg.Options.DataDir, "pattern-meta.json"),
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	if err := metaStore.Load(); err != nil {
		return nil, err
	}

	compactor := phasegroup.NewCompactor(phasegroup.CompactorConfig{
		Manifest:   manifestIdx,
		RenameOpts: fsutil.DefaultRenameRetryOptions(),
		Logger:     log,
	})

	selector := cfg.Selector
	if selector == nil {
		selector, err = bootstrapSelector(manifestIdx, cfg.Options)
		if err != nil {
			return nil, err
		}
	}

	e := &Engine{
		opts:       cfg.Options,
		log:        log,
		segmentDir: segmentDir,
		manifest:   manifestIdx,
		meta:       metaStore,
		selector:   selector,
		resonance:  kernel.New(),
		classifier: kernel.NewZoneClassifier(),
		compactor:  compactor,
		sink:       sink,
		groups:     make(map[string]*phasegroup.Group),
	}

	if err := e.hydrateGroupsFromManifest(); err != nil {
		return nil, err
	}

	return e, nil
}

// hydrateGroupsFromManifest reopens every on-disk segment file the loaded
// manifest still references and registers it with its owning phase segment
// group via Group.AdoptExisting, so a reopened store can serve queries
// against data written in a previous process without waiting for a write
// to first touch that phase bucket.
func (e *Engine) hydrateGroupsFromManifest() error {
	byBase := make(map[string][]string)
	seen := make(map[string]bool)

	for _, loc := range e.manifest.Locations() {
		base := phasegroup.SegmentBaseName(loc.SegmentName)
		key := base + "/" + loc.SegmentName
		if seen[key] {
			continue
		}
		seen[key] = true
		byBase[base] = append(byBase[base], loc.SegmentName)
	}

	for base, names := range byBase {
		group := e.getOrCreateGroupLocked(base)
		for _, name := range orderSegmentFiles(base, names) {
			w, err := segment.OpenWriter(segment.WriterConfig{
				Path:           filepath.Join(e.segmentDir, name),
				ChecksumLength: e.opts.ChecksumOptions.Length,
				TargetBytes:    int64(e.opts.SegmentOptions.MaxBytes),
				Logger:         e.log,
			})
			if err != nil {
				return err
			}
			seq, _ := phasegroup.ParseSegmentIndex(base, name)
			group.AdoptExisting(w, seq)
		}
	}
	return nil
}

// orderSegmentFiles sorts base's on-disk file names into adoption order: a
// merged file (if any) first, since it logically precedes everything
// written after the compaction that produced it, then plain "-<idx>"
// segments ascending by index, so the last-adopted writer (and therefore
// Group.current) is the most recently created one.
func orderSegmentFiles(base string, names []string) []string {
	type indexedFile struct {
		name string
		idx  int
	}

	var merged []string
	var indexed []indexedFile
	for _, name := range names {
		if idx, ok := phasegroup.ParseSegmentIndex(base, name); ok {
			indexed = append(indexed, indexedFile{name: name, idx: idx})
		} else {
			merged = append(merged, name)
		}
	}

	sort.Strings(merged)
	sort.Slice(indexed, func(i, j int) bool { return indexed[i].idx < indexed[j].idx })

	out := make([]string, 0, len(names))
	out = append(out, merged...)
	for _, f := range indexed {
		out = append(out, f.name)
	}
	return out
}

// bootstrapSelector builds the shard selector for a store that was opened
// without a caller-supplied one: if the manifest already has entries (a
// reopened store), it reconstructs the explicit phase-range map those
// entries imply; otherwise it falls back to opts.ShardOptions.Mode, either
// a single-bucket explicit map (every pattern lands in the same group until
// enough data exists to shard meaningfully) or a fresh hash-modulo selector.
func bootstrapSelector(manifestIdx *manifest.Index, opts config.Options) (*shard.Selector, error) {
	if locs := manifestIdx.Locations(); len(locs) > 0 {
		return shard.FromManifest(locs)
	}

	if opts.ShardOptions.Mode == config.ShardModeHash {
		return shard.NewHash(opts.ShardOptions.TotalShards)
	}

	return shard.NewExplicit(map[float64]string{0: "phase-0.segment"})
}

// cleanupStaleTmpFiles removes every "*-tmp-merged-*.segment" file left
// behind by a compaction that crashed before its rename, per filesystem
// layout §6; safe to delete at startup since the pre-compaction segments
// it would have replaced are still on disk and still authoritative.
func cleanupStaleTmpFiles(segmentDir string) error {
	matches, err := filepath.Glob(filepath.Join(segmentDir, "*-tmp-merged-*.segment"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := fsutil.DeleteFile(m); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the manifest and metadata side-store. It does not close
// individual phase group writers; callers that need a fully clean shutdown
// should stop issuing operations before calling Close.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.globalLock.Lock()
	defer e.globalLock.Unlock()

	if err := e.manifest.Flush(); err != nil {
		return err
	}
	return e.meta.Flush()
}

// Insert writes pattern (with its accompanying meta) and returns its
// content-derived id. Re-inserting an id that already exists appends a new
// copy of the record and repoints the manifest at it (last-writer-wins
// replace); the earlier copy's bytes stay in their segment until compaction.
func (e *Engine) Insert(amp, phase []float64, meta map[string]any) (string, error) {
	pattern, err := waveform.New(amp, phase)
	if err != nil {
		return "", err
	}

	id := checksum.RecordID(pattern.Amp, pattern.Phase)

	e.globalLock.Lock()
	defer e.globalLock.Unlock()

	meanPhase := pattern.MeanPhase()
	segBase := e.selector.SelectShard(pattern)

	group := e.getOrCreateGroupLocked(segBase)
	writer, err := group.GetWritable()
	if err != nil {
		return "", err
	}

	idBytes, err := idBytesFromHex(id)
	if err != nil {
		return "", err
	}

	offset, err := writer.Write(idBytes, pattern.Amp, pattern.Phase)
	if err != nil {
		return "", err
	}
	if err := writer.Flush(); err != nil {
		return "", err
	}

	e.manifest.Put(manifest.PatternLocation{
		ID:          id,
		SegmentName: writer.GetSegmentName(),
		Offset:      offset,
		PhaseCenter: meanPhase,
	})

	if meta != nil {
		e.meta.Put(id, meta)
		if err := e.meta.Flush(); err != nil {
			return "", err
		}
	}

	if group.ShouldCompact() {
		if _, err := e.compactor.Compact(group, e.opts.ChecksumOptions.Length); err != nil {
			e.log.Warnw("opportunistic compaction failed, store remains usable on pre-compaction layout",
				"segment", segBase, "error", err)
		}
	}

	e.sink.Record(trace.Event{Op: "insert", ID: id, Segment: writer.GetSegmentName()})

	return id, nil
}

// Query scores every record in the shard-selected candidate segments
// against q, sorts by zoneScore descending (ties by energy descending,
// then id ascending), and returns the top K.
func (e *Engine) Query(amp, phase []float64, k int, eps float64) ([]ResonanceMatch, error) {
	q, err := waveform.New(amp, phase)
	if err != nil {
		return nil, err
	}

	e.globalLock.RLock()
	defer e.globalLock.RUnlock()

	candidates := e.selector.GetRelevantShards(q, eps)

	var matches []ResonanceMatch
	var lastErr error
	attempted, failures := 0, 0

	for _, segBase := range candidates {
		group := e.getOrCreateGroupLocked(segBase)
		for _, w := range group.Writers() {
			attempted++
			reader, err := segment.OpenReader(segment.ReaderConfig{
				Path:           w.Path(),
				ChecksumLength: e.opts.ChecksumOptions.Length,
				Logger:         e.log,
			})
			if err != nil {
				e.log.Warnw("skipping unreadable candidate segment", "segment", w.GetSegmentName(), "error", err)
				failures++
				lastErr = err
				continue
			}

			records, err := reader.ReadAllWithID()
			reader.Close()
			if err != nil {
				e.log.Warnw("skipping candidate segment with enumeration failure", "segment", w.GetSegmentName(), "error", err)
				failures++
				lastErr = err
				continue
			}

			for _, rec := range records {
				candidate, err := rec.ToWavePattern()
				if err != nil {
					continue
				}
				energy, phaseDelta, err := e.resonance.CompareWithPhaseDelta(q, candidate)
				if err != nil {
					continue
				}
				zone := e.classifier.Classify(energy, phaseDelta)
				zoneScore := e.classifier.ComputeScore(energy, absFloat(phaseDelta))

				matches = append(matches, ResonanceMatch{
					ID: rec.ID, Amp: rec.Amp, Phase: rec.Phase,
					Energy: energy, PhaseDelta: phaseDelta, Zone: zone, ZoneScore: zoneScore,
				})
			}
		}
	}

	if attempted > 0 && failures == attempted {
		return nil, errs.NewSegmentError(
			errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeSegmentCorrupted,
			"all candidate segments failed to open or enumerate",
		).WithDetail("cause", lastErr)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].ZoneScore != matches[j].ZoneScore {
			return matches[i].ZoneScore > matches[j].ZoneScore
		}
		if matches[i].Energy != matches[j].Energy {
			return matches[i].Energy > matches[j].Energy
		}
		return matches[i].ID < matches[j].ID
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}

	e.sink.Record(trace.Event{Op: "query"})
	return matches, nil
}

// Delete removes id's manifest and metadata entries. The record's bytes
// remain in its segment until compaction folds the segment (tombstone by
// absence from the manifest).
func (e *Engine) Delete(id string) error {
	e.globalLock.Lock()
	defer e.globalLock.Unlock()

	if _, ok := e.manifest.Get(id); !ok {
		return errs.NewManifestError(
			errs.ErrNotFound, errs.ErrNotFound, errs.ErrorCodeNotFound, "record id not found",
		).WithID(id)
	}

	e.manifest.Remove(id)
	e.meta.Remove(id)

	e.sink.Record(trace.Event{Op: "delete", ID: id})
	return nil
}

// getOrCreateGroupLocked returns the phase segment group for segBase,
// creating it if this is the first time segBase has been routed to. The
// caller must hold globalLock.
func (e *Engine) getOrCreateGroupLocked(segBase string) *phasegroup.Group {
	e.groupsMu.Lock()
	defer e.groupsMu.Unlock()

	if g, ok := e.groups[segBase]; ok {
		return g
	}

	g := phasegroup.New(phasegroup.Config{
		BaseName:       segBase,
		BaseDir:        e.segmentDir,
		ChecksumLength: e.opts.ChecksumOptions.Length,
		MaxBytes:       e.opts.SegmentOptions.MaxBytes,
		MinSegments:    e.opts.CompactionOptions.MinSegments,
		FillThreshold:  e.opts.CompactionOptions.FillThreshold,
		Logger:         e.log,
	})
	e.groups[segBase] = g
	return g
}

func idBytesFromHex(id string) ([16]byte, error) {
	var out [16]byte
	raw, err := hex.DecodeString(id)
	if err != nil || len(raw) != 16 {
		return out, invalidIDErr(id)
	}
	copy(out[:], raw)
	return out, nil
}

func invalidIDErr(id string) error {
	return errs.NewPatternError(
		errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput, "malformed record id",
	).WithField("id").WithDetail("id", id)
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
