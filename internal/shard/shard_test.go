package shard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonancedb/resonancedb/internal/manifest"
	"github.com/resonancedb/resonancedb/internal/shard"
	"github.com/resonancedb/resonancedb/pkg/waveform"
)

func mustPattern(t *testing.T, meanPhase float64) waveform.WavePattern {
	t.Helper()
	p, err := waveform.New([]float64{1}, []float64{meanPhase})
	require.NoError(t, err)
	return p
}

func TestNewExplicitRejectsEmptyMap(t *testing.T) {
	_, err := shard.NewExplicit(nil)
	require.Error(t, err)
}

func TestNewHashRejectsNonPositiveShardCount(t *testing.T) {
	_, err := shard.NewHash(0)
	require.Error(t, err)
}

func TestSelectShardExplicitFloorLookup(t *testing.T) {
	sel, err := shard.NewExplicit(map[float64]string{
		-3.0: "phase-neg3",
		0.0:  "phase-0",
		3.0:  "phase-3",
	})
	require.NoError(t, err)

	assert.Equal(t, "phase-0", sel.SelectShard(mustPattern(t, 0.5)))
	assert.Equal(t, "phase-3", sel.SelectShard(mustPattern(t, 3.1)))
	// Phase preceding every center wraps to the first (lowest) entry.
	assert.Equal(t, "phase-neg3", sel.SelectShard(mustPattern(t, -3.1)))
}

func TestSelectShardHashIsDeterministic(t *testing.T) {
	sel, err := shard.NewHash(4)
	require.NoError(t, err)

	p := mustPattern(t, 1.23)
	first := sel.SelectShard(p)
	second := sel.SelectShard(p)
	assert.Equal(t, first, second)
	assert.Contains(t, []string{
		shard.HashBucketName(0), shard.HashBucketName(1), shard.HashBucketName(2), shard.HashBucketName(3),
	}, first)
}

func TestGetRelevantShardsHashModeReturnsSingleBucket(t *testing.T) {
	sel, err := shard.NewHash(4)
	require.NoError(t, err)

	got := sel.GetRelevantShards(mustPattern(t, 0.7), 0.1)
	assert.Len(t, got, 1)
}

func TestGetRelevantShardsExplicitWindow(t *testing.T) {
	sel, err := shard.NewExplicit(map[float64]string{
		-3.0: "phase-neg3",
		0.0:  "phase-0",
		3.0:  "phase-3",
	})
	require.NoError(t, err)

	got := sel.GetRelevantShards(mustPattern(t, 0.0), 0.1)
	assert.Equal(t, []string{"phase-0"}, got)
}

func TestGetRelevantShardsWrapsAcrossBoundary(t *testing.T) {
	sel, err := shard.NewExplicit(map[float64]string{
		-3.0: "phase-neg3",
		0.0:  "phase-0",
		3.0:  "phase-3",
	})
	require.NoError(t, err)

	// mean phase 3.1 with eps 0.5 spans [2.6, 3.6], which crosses +pi and
	// wraps to include the segment centered near -pi too.
	got := sel.GetRelevantShards(mustPattern(t, 3.1), 0.5)
	assert.Contains(t, got, "phase-3")
	assert.Contains(t, got, "phase-neg3")
}

func TestGetRelevantShardsFallsBackToAllSegmentsWhenWindowEmpty(t *testing.T) {
	sel, err := shard.NewExplicit(map[float64]string{
		-3.0: "phase-neg3",
		3.0:  "phase-3",
	})
	require.NoError(t, err)

	// A narrow window around 0 matches nothing in a sparse two-entry map.
	got := sel.GetRelevantShards(mustPattern(t, 0.0), 0.01)
	assert.ElementsMatch(t, []string{"phase-neg3", "phase-3"}, got)
}

func TestFromManifestGroupsAndAverages(t *testing.T) {
	// SegmentName is always the writer-level file name FromManifest must
	// reduce to its owning phase-bucket base before grouping/averaging.
	locs := []manifest.PatternLocation{
		{ID: "a", SegmentName: "phase-0.segment-0.segment", PhaseCenter: 0.1},
		{ID: "b", SegmentName: "phase-0.segment-1.segment", PhaseCenter: 0.3},
		{ID: "c", SegmentName: "phase-1.segment-0.segment", PhaseCenter: 2.9},
	}

	sel, err := shard.FromManifest(locs)
	require.NoError(t, err)

	assert.Equal(t, "phase-0.segment", sel.SelectShard(mustPattern(t, 0.2)))
	assert.Equal(t, "phase-1.segment", sel.SelectShard(mustPattern(t, 3.0)))
}

func TestFallbackRouteIfLowCoherenceIsANoOp(t *testing.T) {
	sel, err := shard.NewExplicit(map[float64]string{0: "phase-0"})
	require.NoError(t, err)

	segBase, ok := shard.FallbackRouteIfLowCoherence(sel, mustPattern(t, 0), 0.1)
	assert.False(t, ok)
	assert.Empty(t, segBase)
}

func TestHashBucketNameFormat(t *testing.T) {
	assert.Equal(t, "phase-0.segment", shard.HashBucketName(0))
	assert.Equal(t, "phase-7.segment", shard.HashBucketName(7))
}
