// Package shard implements the PhaseShardSelector: routing of a pattern's
// mean phase to one or more candidate phase segment group base names.
package shard

import (
	"github.com/resonancedb/resonancedb/pkg/config"
)

// entry is one (phaseCenter, segmentBaseName) pair in the explicit range
// map, kept in insertion order alongside the sorted center slice.
type entry struct {
	center  float64
	segment string
}

// Selector maps a pattern to one or more candidate phase segment group
// base names, either via an explicit sorted phase-range map or via a
// hash-modulo bucket count.
type Selector struct {
	mode config.ShardMode

	// explicit mode
	entries []entry // sorted ascending by center

	// hash mode
	totalShards int
}
