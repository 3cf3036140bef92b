package engine

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/internal/kernel"
	"github.com/resonancedb/resonancedb/internal/manifest"
	"github.com/resonancedb/resonancedb/internal/metastore"
	"github.com/resonancedb/resonancedb/internal/phasegroup"
	"github.com/resonancedb/resonancedb/internal/shard"
	"github.com/resonancedb/resonancedb/internal/trace"
	"github.com/resonancedb/resonancedb/pkg/config"
)

// Engine is the facade composing the shard selector, manifest, phase
// segment groups, and resonance kernel into insert/query/delete
// operations. A single process-wide lock (globalLock) serializes
// structural writes against queries; per-group locks (inside
// phasegroup.Group) serialize writable-segment selection.
type Engine struct {
	globalLock sync.RWMutex

	opts config.Options
	log  *zap.SugaredLogger

	segmentDir string

	manifest   *manifest.Index
	meta       *metastore.Store
	selector   *shard.Selector
	resonance  *kernel.Resonance
	classifier *kernel.ZoneClassifier
	compactor  *phasegroup.Compactor
	sink       trace.Sink

	groupsMu sync.Mutex
	groups   map[string]*phasegroup.Group

	closed atomic.Bool
}

// Config holds every dependency New needs to build an Engine.
type Config struct {
	Options config.Options
	Logger  *zap.SugaredLogger

	// Selector is the (pre-built) PhaseShardSelector routing patterns to
	// phase segment groups. Optional: if nil, New reconstructs one from
	// the loaded manifest, or bootstraps a fresh one per
	// Options.ShardOptions.Mode for a brand-new store.
	Selector *shard.Selector

	// Sink receives trace events for insert/query/delete operations;
	// compaction runs are not traced. Defaults to trace.Noop{} if nil.
	Sink trace.Sink
}

// ResonanceMatch is one scored result from Query.
type ResonanceMatch struct {
	ID         string
	Amp        []float64
	Phase      []float64
	Energy     float64
	PhaseDelta float64
	Zone       kernel.Zone
	ZoneScore  float64
}
