// Package config provides data structures and functions for configuring the
// resonance store. It defines the parameters that control segment sizing,
// checksum selection, compaction thresholds, and shard routing.
package config

import (
	"strings"
)

// segmentOptions defines configurable parameters for segment files within a
// phase segment group.
type segmentOptions struct {
	// MaxBytes is the soft cap on a segment's approximate size before
	// getWritable() rotates to a new segment.
	//
	//  - Default: 32 MiB
	MaxBytes uint64 `json:"maxBytes"`

	// Directory is where segment files are stored, relative to DataDir.
	//
	// Default: "segments"
	Directory string `json:"directory"`

	// Prefix is a configured filename prefix for segment files. Segment
	// files are named `<base>-<idx>.segment`; this value does not appear in
	// them.
	//
	// Default: "seg"
	Prefix string `json:"prefix"`
}

// checksumOptions controls which checksum algorithm segments use.
type checksumOptions struct {
	// Length is the checksum width in bytes: 4 selects CRC32, 8 selects
	// XXH64 seeded with 0x9747b28c. WithChecksumLength ignores any other
	// value; a segment writer or reader given one fails with InvalidArgument.
	//
	// Default: 8
	Length int `json:"length"`
}

// compactionOptions controls when a phase segment group compacts its
// underfilled segments into one.
type compactionOptions struct {
	// MinSegments is the smallest writer-list length at which
	// shouldCompact() considers a group a compaction candidate.
	//
	// Default: 4
	MinSegments int `json:"minSegments"`

	// FillThreshold is the average fill ratio below which a group counts
	// as sparse and eligible for compaction.
	//
	// Default: 0.35
	FillThreshold float64 `json:"fillThreshold"`
}

// ShardMode selects how the phase shard selector routes a query phase to a
// segment group.
type ShardMode string

const (
	// ShardModeExplicit routes via an explicit, sorted phase-range map.
	ShardModeExplicit ShardMode = "explicit"

	// ShardModeHash routes via a hash of the mean phase modulo the shard count.
	ShardModeHash ShardMode = "hash"
)

// shardOptions controls phase-based query routing.
type shardOptions struct {
	// Epsilon is the default search tolerance (radians) used when a query
	// doesn't specify its own, for getRelevantShards' circular interval scan.
	//
	// Default: 0.05
	Epsilon float64 `json:"epsilon"`

	// Mode selects explicit-range or hash-modulo routing.
	//
	// Default: ShardModeExplicit
	Mode ShardMode `json:"mode"`

	// TotalShards is the bucket count hash-modulo routing synthesizes
	// "phase-<i>.segment" base names for. Unused in explicit mode.
	//
	// Default: 8
	TotalShards int `json:"totalShards"`
}

// Options is the configuration for a resonance store instance.
type Options struct {
	// DataDir is the base path under which segment, manifest, and metastore
	// files are stored.
	//
	// Default: "/var/lib/resonancedb"
	DataDir string `json:"dataDir"`

	SegmentOptions   *segmentOptions   `json:"segmentOptions"`
	ChecksumOptions  *checksumOptions  `json:"checksumOptions"`
	CompactionOptions *compactionOptions `json:"compactionOptions"`
	ShardOptions     *shardOptions     `json:"shardOptions"`
}

// OptionFunc mutates an Options value during construction.
type OptionFunc func(*Options)

// WithDefaultOptions applies the full set of default configuration values.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		defaults := NewDefaultOptions()
		*o = defaults
	}
}

// WithDataDir sets the base data directory.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithSegmentDir sets the subdirectory segment files are written under.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// WithSegmentPrefix sets the filename prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// WithSegmentMaxBytes sets the soft size cap that triggers segment rotation.
func WithSegmentMaxBytes(maxBytes uint64) OptionFunc {
	return func(o *Options) {
		if maxBytes > 0 {
			o.SegmentOptions.MaxBytes = maxBytes
		}
	}
}

// WithChecksumLength selects the checksum algorithm: 4 for CRC32, 8 for XXH64.
func WithChecksumLength(length int) OptionFunc {
	return func(o *Options) {
		if length == 4 || length == 8 {
			o.ChecksumOptions.Length = length
		}
	}
}

// WithCompactionThresholds sets the minimum writer-list length and average
// fill ratio that together make a phase segment group a compaction candidate.
func WithCompactionThresholds(minSegments int, fillThreshold float64) OptionFunc {
	return func(o *Options) {
		if minSegments > 0 {
			o.CompactionOptions.MinSegments = minSegments
		}
		if fillThreshold > 0 && fillThreshold < 1 {
			o.CompactionOptions.FillThreshold = fillThreshold
		}
	}
}

// WithShardEpsilon sets the default phase-circle search tolerance.
func WithShardEpsilon(epsilon float64) OptionFunc {
	return func(o *Options) {
		if epsilon > 0 {
			o.ShardOptions.Epsilon = epsilon
		}
	}
}

// WithShardMode selects explicit-range or hash-modulo shard routing.
func WithShardMode(mode ShardMode) OptionFunc {
	return func(o *Options) {
		if mode == ShardModeExplicit || mode == ShardModeHash {
			o.ShardOptions.Mode = mode
		}
	}
}

// WithShardTotalShards sets the bucket count hash-modulo routing uses.
func WithShardTotalShards(totalShards int) OptionFunc {
	return func(o *Options) {
		if totalShards > 0 {
			o.ShardOptions.TotalShards = totalShards
		}
	}
}
