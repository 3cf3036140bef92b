// Package phasegroup implements the PhaseSegmentGroup (all segments of one
// phase bucket, and the writable-segment selection policy over them) and
// the DefaultSegmentCompactor that folds a group's underfilled segments
// into one.
package phasegroup

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/internal/segment"
)

// Group owns all segments sharing one base name (one phase bucket). It
// keeps an ordered writer list, a monotonically increasing sequence
// counter for new segment names, and a "current" writable pointer. Older
// segments are read-only once a newer current segment exists.
type Group struct {
	mu sync.Mutex

	baseName string
	baseDir  string

	checksumLength int
	maxBytes       uint64

	writers []*segment.Writer
	current *segment.Writer
	nextSeq int

	minSegments   int
	fillThreshold float64

	log *zap.SugaredLogger
}

// Config configures New.
type Config struct {
	BaseName       string
	BaseDir        string
	ChecksumLength int
	MaxBytes       uint64
	MinSegments    int
	FillThreshold  float64
	Logger         *zap.SugaredLogger
}

// New creates a Group with no segments yet; the first call to GetWritable
// opens segment 0.
func New(cfg Config) *Group {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Group{
		baseName:       cfg.BaseName,
		baseDir:        cfg.BaseDir,
		checksumLength: cfg.ChecksumLength,
		maxBytes:       cfg.MaxBytes,
		minSegments:    cfg.MinSegments,
		fillThreshold:  cfg.FillThreshold,
		log:            log,
	}
}

// SegmentFileName builds the file name for segment index idx of base.
func SegmentFileName(base string, idx int) string {
	return fmt.Sprintf("%s-%d.segment", base, idx)
}

// MergedFileName builds the committed compacted-segment file name for base
// at the given logical timestamp (milliseconds).
func MergedFileName(base string, ts int64) string {
	return fmt.Sprintf("%s-merged-%d.segment", base, ts)
}

// TmpMergedFileName builds the transient compacted-segment file name for
// base at the given logical timestamp (milliseconds).
func TmpMergedFileName(base string, ts int64) string {
	return fmt.Sprintf("%s-tmp-merged-%d.segment", base, ts)
}

// TmpMergedGlob returns the glob pattern matching every stale tmp-merged
// file for base, for compaction's crash-cleanup step.
func TmpMergedGlob(base string) string {
	return fmt.Sprintf("%s-tmp-merged-*.segment", base)
}

// ParseSegmentIndex extracts the numeric index from a "<base>-<idx>.segment"
// filename. It returns ok=false for merged/tmp-merged names.
func ParseSegmentIndex(base, fileName string) (int, bool) {
	name := strings.TrimSuffix(filepath.Base(fileName), ".segment")
	prefix := base + "-"
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	idxStr := strings.TrimPrefix(name, prefix)
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// SegmentBaseName recovers the phase-bucket base name from a writer-level
// segment file name, stripping whichever of the three suffix shapes
// SegmentFileName/MergedFileName/TmpMergedFileName produced it
// ("-<idx>.segment", "-merged-<ts>.segment", "-tmp-merged-<ts>.segment").
func SegmentBaseName(fileName string) string {
	name := strings.TrimSuffix(filepath.Base(fileName), ".segment")
	switch {
	case strings.Contains(name, "-tmp-merged-"):
		return name[:strings.LastIndex(name, "-tmp-merged-")]
	case strings.Contains(name, "-merged-"):
		return name[:strings.LastIndex(name, "-merged-")]
	default:
		if idx := strings.LastIndex(name, "-"); idx >= 0 {
			return name[:idx]
		}
		return name
	}
}

// GetWritable returns the group's current writer if it still has room
// under MaxBytes; otherwise it opens a new segment at the next sequence
// number, appends it to the writer list, advances current, and returns it.
// The group lock ensures exactly one segment creation per overflow.
func (g *Group) GetWritable() (*segment.Writer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != nil && !g.current.IsOverflow(g.maxBytes) {
		return g.current, nil
	}

	idx := g.nextSeq
	g.nextSeq++

	path := filepath.Join(g.baseDir, SegmentFileName(g.baseName, idx))
	w, err := segment.OpenWriter(segment.WriterConfig{
		Path:           path,
		ChecksumLength: g.checksumLength,
		TargetBytes:    int64(g.maxBytes),
		Logger:         g.log,
	})
	if err != nil {
		return nil, err
	}

	g.writers = append(g.writers, w)
	g.current = w

	g.log.Infow("opened new segment for group", "base", g.baseName, "segment", w.GetSegmentName())
	return w, nil
}

// ShouldCompact reports whether the group is a compaction candidate: at
// least MinSegments writers, and an average fill ratio under FillThreshold.
func (g *Group) ShouldCompact() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shouldCompactLocked()
}

func (g *Group) shouldCompactLocked() bool {
	if len(g.writers) < g.minSegments {
		return false
	}

	total := 0.0
	for _, w := range g.writers {
		total += w.GetFillRatio()
	}
	avg := total / float64(len(g.writers))
	return avg < g.fillThreshold
}

// Writers returns a snapshot of the group's current writer list.
func (g *Group) Writers() []*segment.Writer {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*segment.Writer, len(g.writers))
	copy(out, g.writers)
	return out
}

// BaseName returns the group's phase-bucket base name.
func (g *Group) BaseName() string { return g.baseName }

// BaseDir returns the directory the group's segment files live in.
func (g *Group) BaseDir() string { return g.baseDir }

// ResetTo replaces the writer list with a single merged writer, the
// post-compaction state. If the writer's filename carries a sequence index
// ("<base>-<idx>.segment"), the sequence counter is advanced past it so
// future GetWritable calls cannot collide; merged files carry a timestamp
// rather than a sequence index, so for them the counter is left as it is
// and new segments continue from nextSeq.
func (g *Group) ResetTo(w *segment.Writer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writers = []*segment.Writer{w}
	g.current = w
	if seq, ok := ParseSegmentIndex(g.baseName, w.GetSegmentName()); ok && seq >= g.nextSeq {
		g.nextSeq = seq + 1
	}
}

// AdoptExisting registers a writer discovered on disk during startup
// recovery, without going through GetWritable's overflow policy.
func (g *Group) AdoptExisting(w *segment.Writer, seq int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writers = append(g.writers, w)
	g.current = w
	if seq >= g.nextSeq {
		g.nextSeq = seq + 1
	}
}
