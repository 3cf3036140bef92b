package store

import (
	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/internal/engine"
	"github.com/resonancedb/resonancedb/internal/trace"
	"github.com/resonancedb/resonancedb/pkg/config"
)

// Store is the public entry point for the resonance store: it wires an
// Engine from Options and a shard selector, and exposes Insert/Query/Delete
// as the caller-facing API.
type Store struct {
	engine *engine.Engine
	opts   config.Options
	log    *zap.SugaredLogger
}

// Match is one scored result from Query.
type Match = engine.ResonanceMatch

// buildConfig collects everything NewStore needs before it can construct
// the underlying Engine.
type buildConfig struct {
	logLevel      string
	sink          trace.Sink
	explicitMap   map[float64]string
	hashShards    int
	useHashShards bool
}

// StoreOption configures NewStore beyond the engine-level config.OptionFunc
// knobs: log verbosity, the trace sink, and the shard selector's routing
// table.
type StoreOption func(*buildConfig)

// WithLogLevel sets the logger verbosity ("debug", "info", "warn", "error").
// Default: "info".
func WithLogLevel(level string) StoreOption {
	return func(bc *buildConfig) {
		if level != "" {
			bc.logLevel = level
		}
	}
}

// WithTraceSink installs a non-default trace.Sink for insert/query/delete
// events.
func WithTraceSink(sink trace.Sink) StoreOption {
	return func(bc *buildConfig) {
		if sink != nil {
			bc.sink = sink
		}
	}
}

// WithExplicitShardMap selects explicit-range shard routing using
// phaseShardMap as the initial phaseCenter -> segment base name table. A
// reopened store with existing data ignores this in favor of the table
// reconstructed from its manifest.
func WithExplicitShardMap(phaseShardMap map[float64]string) StoreOption {
	return func(bc *buildConfig) {
		if len(phaseShardMap) > 0 {
			bc.explicitMap = phaseShardMap
			bc.useHashShards = false
		}
	}
}

// WithHashShards selects hash-modulo shard routing with totalShards
// buckets. A reopened store with existing data ignores this in favor of the
// explicit table reconstructed from its manifest.
func WithHashShards(totalShards int) StoreOption {
	return func(bc *buildConfig) {
		if totalShards > 0 {
			bc.hashShards = totalShards
			bc.useHashShards = true
		}
	}
}

func newBuildConfig() buildConfig {
	return buildConfig{
		logLevel: "info",
		sink:     trace.Noop{},
	}
}
