// Package store is the public facade over the resonance store: it builds a
// configured Engine from functional options and exposes Insert, Query, and
// Delete as the caller-facing API.
package store

import (
	"github.com/resonancedb/resonancedb/internal/engine"
	"github.com/resonancedb/resonancedb/internal/shard"
	"github.com/resonancedb/resonancedb/pkg/config"
	"github.com/resonancedb/resonancedb/pkg/obslog"
)

// NewStore builds a Store: it applies the given config.OptionFuncs over the
// default configuration, builds a selector per the StoreOptions (or lets
// the engine reconstruct one from an existing manifest on reopen), and
// constructs the underlying Engine.
func NewStore(optFuncs []config.OptionFunc, storeOpts ...StoreOption) (*Store, error) {
	options := config.BuildOptions(optFuncs...)

	bc := newBuildConfig()
	for _, so := range storeOpts {
		so(&bc)
	}

	log, err := obslog.New(bc.logLevel)
	if err != nil {
		return nil, err
	}

	selector, err := selectorFor(bc)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(engine.Config{
		Options:  options,
		Logger:   log,
		Selector: selector,
		Sink:     bc.sink,
	})
	if err != nil {
		return nil, err
	}

	return &Store{engine: eng, opts: options, log: log}, nil
}

// selectorFor returns the caller-requested selector, if any explicit or
// hash StoreOption was set. Returning nil lets Engine.New reconstruct one
// from the manifest (reopen) or bootstrap a default (brand-new store).
func selectorFor(bc buildConfig) (*shard.Selector, error) {
	switch {
	case bc.explicitMap != nil:
		return shard.NewExplicit(bc.explicitMap)
	case bc.useHashShards:
		return shard.NewHash(bc.hashShards)
	default:
		return nil, nil
	}
}

// Insert stores pattern (amp, phase) with its accompanying metadata and
// returns its content-derived id. Re-inserting the same (amp, phase) pair
// appends a new copy and repoints the manifest at it; the prior copy's
// bytes remain on disk until the owning phase segment group next compacts.
func (s *Store) Insert(amp, phase []float64, meta map[string]any) (string, error) {
	return s.engine.Insert(amp, phase, meta)
}

// Query scores every pattern in the phase-relevant candidate segments
// against (amp, phase) and returns the top k matches, ranked by zone score
// descending. eps widens or narrows the candidate window around the
// query's mean phase; a non-positive eps falls back to
// Options.ShardOptions.Epsilon.
func (s *Store) Query(amp, phase []float64, k int, eps float64) ([]Match, error) {
	if eps <= 0 {
		eps = s.opts.ShardOptions.Epsilon
	}
	return s.engine.Query(amp, phase, k, eps)
}

// Delete removes id from the store. Its bytes remain on disk until the
// owning phase segment group next compacts.
func (s *Store) Delete(id string) error {
	return s.engine.Delete(id)
}

// Close flushes the manifest and metadata side-store. It does not stop
// in-flight operations; callers should quiesce writers before closing.
func (s *Store) Close() error {
	return s.engine.Close()
}
