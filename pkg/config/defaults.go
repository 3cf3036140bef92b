package config

const (
	// DefaultDataDir is the base directory the store uses when none is given.
	DefaultDataDir = "/var/lib/resonancedb"

	// DefaultSegmentMaxBytes is the soft per-segment size cap (32 MiB).
	DefaultSegmentMaxBytes uint64 = 32 * 1024 * 1024

	// DefaultSegmentDirectory is the subdirectory segment files live under.
	DefaultSegmentDirectory = "segments"

	// DefaultSegmentPrefix is the default segment filename prefix.
	DefaultSegmentPrefix = "seg"

	// DefaultChecksumLength selects XXH64 (8 bytes) by default.
	DefaultChecksumLength = 8

	// DefaultCompactionMinSegments is the smallest writer-list length at
	// which a group is considered for compaction.
	DefaultCompactionMinSegments = 4

	// DefaultCompactionFillThreshold is the average fill ratio below which a
	// group counts as sparse.
	DefaultCompactionFillThreshold = 0.35

	// DefaultShardEpsilon is the default phase-circle search tolerance, in radians.
	DefaultShardEpsilon = 0.05

	// DefaultShardTotalShards is the hash-mode bucket count used when none
	// is given.
	DefaultShardTotalShards = 8
)

// defaultOptions holds the baseline configuration for a resonance store.
var defaultOptions = Options{
	DataDir: DefaultDataDir,
	SegmentOptions: &segmentOptions{
		MaxBytes:  DefaultSegmentMaxBytes,
		Directory: DefaultSegmentDirectory,
		Prefix:    DefaultSegmentPrefix,
	},
	ChecksumOptions: &checksumOptions{
		Length: DefaultChecksumLength,
	},
	CompactionOptions: &compactionOptions{
		MinSegments:   DefaultCompactionMinSegments,
		FillThreshold: DefaultCompactionFillThreshold,
	},
	ShardOptions: &shardOptions{
		Epsilon:     DefaultShardEpsilon,
		Mode:        ShardModeExplicit,
		TotalShards: DefaultShardTotalShards,
	},
}

// NewDefaultOptions returns a copy of the store's default configuration,
// with fresh pointers so callers can mutate it independently.
func NewDefaultOptions() Options {
	opts := defaultOptions
	segCopy := *defaultOptions.SegmentOptions
	checksumCopy := *defaultOptions.ChecksumOptions
	compactionCopy := *defaultOptions.CompactionOptions
	shardCopy := *defaultOptions.ShardOptions
	opts.SegmentOptions = &segCopy
	opts.ChecksumOptions = &checksumCopy
	opts.CompactionOptions = &compactionCopy
	opts.ShardOptions = &shardCopy
	return opts
}

// BuildOptions applies the given option functions over the default
// configuration and returns the resulting Options.
func BuildOptions(opts ...OptionFunc) Options {
	o := NewDefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
