package phasegroup_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonancedb/resonancedb/internal/manifest"
	"github.com/resonancedb/resonancedb/internal/phasegroup"
)

func TestSegmentFileNameAndParseSegmentIndex(t *testing.T) {
	name := phasegroup.SegmentFileName("phase-0", 3)
	assert.Equal(t, "phase-0-3.segment", name)

	idx, ok := phasegroup.ParseSegmentIndex("phase-0", name)
	require.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = phasegroup.ParseSegmentIndex("phase-0", "phase-0-merged-123.segment")
	assert.False(t, ok)
}

func TestMergedAndTmpMergedFileNames(t *testing.T) {
	assert.Equal(t, "phase-0-merged-100.segment", phasegroup.MergedFileName("phase-0", 100))
	assert.Equal(t, "phase-0-tmp-merged-100.segment", phasegroup.TmpMergedFileName("phase-0", 100))
	assert.Equal(t, "phase-0-tmp-merged-*.segment", phasegroup.TmpMergedGlob("phase-0"))
}

func TestGetWritableRotatesOnOverflow(t *testing.T) {
	dir := t.TempDir()
	g := phasegroup.New(phasegroup.Config{
		BaseName: "phase-0", BaseDir: dir, ChecksumLength: 8, MaxBytes: 1,
	})

	w1, err := g.GetWritable()
	require.NoError(t, err)

	// MaxBytes=1 means any write overflows it immediately, so the next
	// GetWritable call must open a new segment.
	w2, err := g.GetWritable()
	require.NoError(t, err)

	assert.NotEqual(t, w1.GetSegmentName(), w2.GetSegmentName())
	assert.Len(t, g.Writers(), 2)
}

func TestShouldCompactRequiresSparsityAndCount(t *testing.T) {
	dir := t.TempDir()
	g := phasegroup.New(phasegroup.Config{
		BaseName: "phase-0", BaseDir: dir, ChecksumLength: 8, MaxBytes: 1 << 20,
		MinSegments: 2, FillThreshold: 0.9,
	})

	// Only one (empty, near-0 fill) writer so far: below MinSegments.
	_, err := g.GetWritable()
	require.NoError(t, err)
	assert.False(t, g.ShouldCompact())
}

func TestResetToReplacesWriterList(t *testing.T) {
	dir := t.TempDir()
	g := phasegroup.New(phasegroup.Config{BaseName: "phase-0", BaseDir: dir, ChecksumLength: 8, MaxBytes: 1 << 20})

	w1, err := g.GetWritable()
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	mergedPath := filepath.Join(dir, "phase-0-merged-1.segment")
	merged, err := newTestWriter(mergedPath)
	require.NoError(t, err)

	g.ResetTo(merged)
	assert.Len(t, g.Writers(), 1)
	assert.Equal(t, merged.GetSegmentName(), g.Writers()[0].GetSegmentName())
}

func TestCompactMergesUnderfilledSegmentsAndUpdatesManifest(t *testing.T) {
	dir := t.TempDir()
	idx, err := manifest.New(manifest.Config{Path: filepath.Join(dir, "manifest.json")})
	require.NoError(t, err)

	g := phasegroup.New(phasegroup.Config{
		BaseName: "phase-0", BaseDir: dir, ChecksumLength: 8, MaxBytes: 1 << 20,
	})

	// Force two separate segments by exhausting the first's budget via
	// ResetTo-free rotation: write one record, then simulate overflow by
	// creating a group with a tiny MaxBytes for the first writer only is
	// awkward, so instead drive two GetWritable rounds through a 1-byte
	// budget group, write into both, then merge via a normal-budget group
	// sharing the same base dir/name and writer list.
	tiny := phasegroup.New(phasegroup.Config{
		BaseName: "phase-0", BaseDir: dir, ChecksumLength: 8, MaxBytes: 1,
	})
	w1, err := tiny.GetWritable()
	require.NoError(t, err)
	off1, err := w1.Write(idBytes(1), []float64{1}, []float64{0.1})
	require.NoError(t, err)
	require.NoError(t, w1.Flush())
	idx.Put(manifest.PatternLocation{ID: hexID(1), SegmentName: w1.GetSegmentName(), Offset: off1, PhaseCenter: 0.1})

	w2, err := tiny.GetWritable()
	require.NoError(t, err)
	off2, err := w2.Write(idBytes(2), []float64{2}, []float64{0.2})
	require.NoError(t, err)
	require.NoError(t, w2.Flush())
	idx.Put(manifest.PatternLocation{ID: hexID(2), SegmentName: w2.GetSegmentName(), Offset: off2, PhaseCenter: 0.2})

	for _, w := range tiny.Writers() {
		g.AdoptExisting(w, 0)
	}

	compactor := phasegroup.NewCompactor(phasegroup.CompactorConfig{
		Manifest:    idx,
		Logger:      nil,
		NowMillisFn: func() int64 { return 42 },
	})

	compacted, err := compactor.Compact(g, 8)
	require.NoError(t, err)
	assert.True(t, compacted)

	writers := g.Writers()
	require.Len(t, writers, 1)
	assert.Equal(t, "phase-0-merged-42.segment", writers[0].GetSegmentName())

	loc1, ok := idx.Get(hexID(1))
	require.True(t, ok)
	assert.Equal(t, "phase-0-merged-42.segment", loc1.SegmentName)

	loc2, ok := idx.Get(hexID(2))
	require.True(t, ok)
	assert.Equal(t, "phase-0-merged-42.segment", loc2.SegmentName)
}

func TestCompactIsNoOpWithOneOrFewerSegments(t *testing.T) {
	dir := t.TempDir()
	idx, err := manifest.New(manifest.Config{Path: filepath.Join(dir, "manifest.json")})
	require.NoError(t, err)

	g := phasegroup.New(phasegroup.Config{BaseName: "phase-0", BaseDir: dir, ChecksumLength: 8, MaxBytes: 1 << 20})
	_, err = g.GetWritable()
	require.NoError(t, err)

	compactor := phasegroup.NewCompactor(phasegroup.CompactorConfig{Manifest: idx})
	compacted, err := compactor.Compact(g, 8)
	require.NoError(t, err)
	assert.False(t, compacted)
}
