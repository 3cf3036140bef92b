package manifest

import (
	"sync"

	"go.uber.org/zap"
)

// PatternLocation records where one record's live copy lives: which
// segment, at what byte offset, and the phase center it was filed under at
// write time. Exactly one PatternLocation exists per id at any moment; a
// compaction repoints it but never duplicates it.
type PatternLocation struct {
	ID          string  `json:"id"`
	SegmentName string  `json:"segmentName"`
	Offset      int64   `json:"offset"`
	PhaseCenter float64 `json:"phaseCenter"`
}

// Index is the durable id -> PatternLocation map, plus an auxiliary
// segmentName -> set-of-ids index compaction uses to enumerate everything
// that currently lives in a given segment.
type Index struct {
	mu    sync.RWMutex
	path  string
	byID  map[string]PatternLocation
	bySeg map[string]map[string]struct{}
	log   *zap.SugaredLogger
}

// Config configures New.
type Config struct {
	// Path is the manifest file's full path (e.g. <dataDir>/manifest.json).
	Path   string
	Logger *zap.SugaredLogger
}
