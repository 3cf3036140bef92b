package shard

import (
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/resonancedb/resonancedb/internal/manifest"
	"github.com/resonancedb/resonancedb/internal/phasegroup"
	"github.com/resonancedb/resonancedb/pkg/config"
	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/waveform"
)

// NewExplicit builds a Selector from an explicit phaseCenter -> segment
// base name map. Centers are normalized to (-pi, pi]; a duplicate
// normalized center is nudged up by math.Nextafter until it's distinct, so
// the internal sorted slice stays strictly increasing.
func NewExplicit(phaseShardMap map[float64]string) (*Selector, error) {
	if len(phaseShardMap) == 0 {
		return nil, errs.NewShardError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeEmptyShardMap,
			"explicit shard map must not be empty",
		)
	}

	keys := make([]float64, 0, len(phaseShardMap))
	for k := range phaseShardMap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := waveform.NormalizePhase(keys[i]), waveform.NormalizePhase(keys[j])
		if ci != cj {
			return ci < cj
		}
		return keys[i] < keys[j]
	})

	entries := make([]entry, 0, len(keys))
	var lastCenter float64
	haveLast := false
	for _, k := range keys {
		center := waveform.NormalizePhase(k)
		if haveLast && center <= lastCenter {
			center = math.Nextafter(lastCenter, math.Inf(1))
		}
		entries = append(entries, entry{center: center, segment: phaseShardMap[k]})
		lastCenter = center
		haveLast = true
	}

	return &Selector{mode: config.ShardModeExplicit, entries: entries}, nil
}

// NewHash builds a hash-modulo Selector with the given bucket count. Base
// names are synthesized as "phase-<i>.segment".
func NewHash(totalShards int) (*Selector, error) {
	if totalShards <= 0 {
		return nil, errs.NewShardError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"totalShards must be positive",
		)
	}
	return &Selector{mode: config.ShardModeHash, totalShards: totalShards}, nil
}

// FromManifest builds an explicit-mode Selector by grouping manifest
// locations by phase-bucket base name and averaging their phaseCenters.
// loc.SegmentName is the writer-level file name (e.g.
// "phase-0.segment-3.segment" or a "-merged-<ts>.segment" variant); it is
// reduced to its owning base name via phasegroup.SegmentBaseName before
// grouping, since SelectShard must return a base name, not a file name.
func FromManifest(locations []manifest.PatternLocation) (*Selector, error) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, loc := range locations {
		base := phasegroup.SegmentBaseName(loc.SegmentName)
		sums[base] += loc.PhaseCenter
		counts[base]++
	}

	phaseMap := make(map[float64]string, len(sums))
	for seg, sum := range sums {
		mean := sum / float64(counts[seg])
		phaseMap[mean] = seg
	}

	return NewExplicit(phaseMap)
}

// HashBucketName returns the synthesized base name for hash bucket i.
func HashBucketName(i int) string {
	return fmt.Sprintf("phase-%d.segment", i)
}

// SelectShard returns the single best-matching segment base name for
// pattern. Explicit mode finds the floor entry of the normalized mean
// phase, wrapping to the first entry if the phase precedes every center.
// Hash mode computes the modulo bucket of the mean phase's hash.
func (s *Selector) SelectShard(pattern waveform.WavePattern) string {
	meanPhase := pattern.MeanPhase()

	if s.mode == config.ShardModeHash {
		bucket := s.hashBucket(meanPhase)
		return HashBucketName(bucket)
	}

	return s.floorEntry(meanPhase).segment
}

func (s *Selector) hashBucket(meanPhase float64) int {
	h := xxhash.Sum64String(fmt.Sprintf("%.17g", meanPhase))
	return int(h % uint64(s.totalShards))
}

// floorEntry returns the entry with the greatest center <= phase, or the
// first entry (wrap-around) if phase precedes every center.
func (s *Selector) floorEntry(phase float64) entry {
	idx := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].center > phase
	})
	if idx == 0 {
		return s.entries[0]
	}
	return s.entries[idx-1]
}

// GetRelevantShards returns the candidate segment base names within eps of
// query's mean phase on the phase circle.
//
// Explicit mode: computes [avg-eps, avg+eps]; if the interval crosses the
// (-pi, pi] boundary it is decomposed into two subranges whose matching
// segments are unioned, preserving insertion order; if the window matches
// nothing (map sparser than the window), every segment is returned.
// Hash mode: returns the single selectShard(query) bucket.
func (s *Selector) GetRelevantShards(query waveform.WavePattern, eps float64) []string {
	if s.mode == config.ShardModeHash {
		return []string{s.SelectShard(query)}
	}

	avg := query.MeanPhase()
	lo := avg - eps
	hi := avg + eps

	var result []string
	seen := make(map[string]bool)

	const pi = math.Pi
	switch {
	case lo < -pi:
		s.collectRange(waveform.NormalizePhase(lo), pi, seen, &result)
		s.collectRange(-pi, hi, seen, &result)
	case hi > pi:
		s.collectRange(lo, pi, seen, &result)
		s.collectRange(-pi, waveform.NormalizePhase(hi), seen, &result)
	default:
		s.collectRange(lo, hi, seen, &result)
	}

	if len(result) == 0 {
		return s.allSegments()
	}
	return result
}

func (s *Selector) collectRange(lo, hi float64, seen map[string]bool, result *[]string) {
	for _, e := range s.entries {
		if e.center >= lo && e.center <= hi && !seen[e.segment] {
			seen[e.segment] = true
			*result = append(*result, e.segment)
		}
	}
}

func (s *Selector) allSegments() []string {
	out := make([]string, 0, len(s.entries))
	seen := make(map[string]bool)
	for _, e := range s.entries {
		if !seen[e.segment] {
			seen[e.segment] = true
			out = append(out, e.segment)
		}
	}
	return out
}

// FallbackRouteIfLowCoherence is a routing hook reserved for a future
// low-coherence fallback path (re-routing a query whose primary shard
// match scores poorly to a secondary candidate). Not yet implemented.
func FallbackRouteIfLowCoherence(s *Selector, pattern waveform.WavePattern, primaryScore float64) (string, bool) {
	return "", false
}
