package phasegroup

import (
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/internal/manifest"
	"github.com/resonancedb/resonancedb/internal/segment"
	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/fsutil"
)

// Compactor merges a group's underfilled segments into one and commits the
// result with an atomic rename.
type Compactor struct {
	manifest    *manifest.Index
	renameOpts  fsutil.RenameRetryOptions
	log         *zap.SugaredLogger
	nowMillisFn func() int64
}

// CompactorConfig configures NewCompactor.
type CompactorConfig struct {
	Manifest   *manifest.Index
	RenameOpts fsutil.RenameRetryOptions
	Logger     *zap.SugaredLogger

	// NowMillisFn supplies the logical timestamp used to derive tmp/final
	// segment names. Tests substitute a deterministic clock.
	NowMillisFn func() int64
}

// NewCompactor builds a Compactor over the given manifest.
func NewCompactor(cfg CompactorConfig) *Compactor {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	now := cfg.NowMillisFn
	if now == nil {
		now = defaultNowMillis
	}
	return &Compactor{manifest: cfg.Manifest, renameOpts: cfg.RenameOpts, log: log, nowMillisFn: now}
}

// Compact merges all of group's current segments into one, holding the
// caller's write lock for the duration (the caller — the engine, under its
// global write lock — is expected to serialize this against concurrent
// writes and queries).
//
// Steps: snapshot the old writers; pick a timestamp and derive tmp/final
// names; clean stale tmp files from a prior crashed run; open a fresh
// writer on the tmp name; for each old segment, re-home every record whose
// manifest entry still points at it; atomically rename tmp to final with
// backoff; register the merged writer and reset the group to it; close and
// delete the old segment files.
func (c *Compactor) Compact(group *Group, checksumLength int) (bool, error) {
	oldWriters := group.Writers()
	if len(oldWriters) <= 1 {
		return false, nil
	}

	ts := c.nowMillisFn()
	tmpName := TmpMergedFileName(group.BaseName(), ts)
	finalName := MergedFileName(group.BaseName(), ts)
	tmpPath := filepath.Join(group.BaseDir(), tmpName)
	finalPath := filepath.Join(group.BaseDir(), finalName)

	if err := c.cleanStaleTmpFiles(group); err != nil {
		c.log.Warnw("failed to clean stale tmp-merged files", "base", group.BaseName(), "error", err)
	}

	tmpWriter, err := segment.OpenWriter(segment.WriterConfig{
		Path:           tmpPath,
		ChecksumLength: checksumLength,
		Logger:         c.log,
	})
	if err != nil {
		return false, err
	}

	for _, oldWriter := range oldWriters {
		if err := c.mergeSegment(oldWriter, tmpWriter, finalName, checksumLength); err != nil {
			return false, err
		}
	}

	if err := tmpWriter.Flush(); err != nil {
		return false, err
	}
	if err := tmpWriter.Close(); err != nil {
		return false, err
	}

	attempts, err := fsutil.AtomicRenameRetry(tmpPath, finalPath, c.renameOpts)
	if err != nil {
		return false, errs.NewCompactionError(
			err, errs.ErrCompactionFailed, errs.ErrorCodeRenameExhausted, "exhausted rename retries committing merged segment",
		).WithGroupBase(group.BaseName()).WithTmpName(tmpName).WithAttempts(attempts)
	}

	mergedWriter, err := segment.OpenWriter(segment.WriterConfig{
		Path:           finalPath,
		ChecksumLength: checksumLength,
		Logger:         c.log,
	})
	if err != nil {
		return false, err
	}
	if err := mergedWriter.Flush(); err != nil {
		return false, err
	}

	group.ResetTo(mergedWriter)

	if err := c.manifest.Flush(); err != nil {
		c.log.Errorw("failed to flush manifest after compaction", "base", group.BaseName(), "error", err)
	}

	c.closeAndDeleteOldSegments(oldWriters)

	c.log.Infow("compacted phase segment group",
		"base", group.BaseName(), "mergedSegments", len(oldWriters), "finalName", finalName, "renameAttempts", attempts)

	return true, nil
}

// mergeSegment re-homes every still-live record of oldWriter into
// tmpWriter, updating the manifest's location for each as it goes.
func (c *Compactor) mergeSegment(oldWriter *segment.Writer, tmpWriter *segment.Writer, finalName string, checksumLength int) error {
	oldSegName := oldWriter.GetSegmentName()

	reader, err := segment.OpenReader(segment.ReaderConfig{
		Path:           oldWriter.Path(),
		ChecksumLength: checksumLength,
		Logger:         c.log,
	})
	if err != nil {
		return err
	}
	defer reader.Close()

	records, err := reader.ReadAllWithID()
	if err != nil {
		return err
	}

	for _, rec := range records {
		loc, ok := c.manifest.Get(rec.ID)
		if !ok || loc.SegmentName != oldSegName || loc.Offset != rec.Offset {
			continue // already superseded; skip
		}

		idBytes, err := decodeRecordID(rec.ID)
		if err != nil {
			return err
		}

		newOffset, err := tmpWriter.Write(idBytes, rec.Amp, rec.Phase)
		if err != nil {
			return err
		}

		c.manifest.Replace(rec.ID, oldSegName, rec.Offset, finalName, newOffset, loc.PhaseCenter)
	}

	return nil
}

// cleanStaleTmpFiles removes tmp-merged files left behind by a compaction
// that crashed before completing its rename.
func (c *Compactor) cleanStaleTmpFiles(group *Group) error {
	matches, err := filepath.Glob(filepath.Join(group.BaseDir(), TmpMergedGlob(group.BaseName())))
	if err != nil {
		return err
	}

	var errOut error
	for _, m := range matches {
		if err := fsutil.DeleteFile(m); err != nil {
			errOut = multierr.Append(errOut, err)
		}
	}
	return errOut
}

// closeAndDeleteOldSegments closes and removes every pre-compaction
// segment file. Failures are logged and ignored: the merged file is
// already canonical by this point.
func (c *Compactor) closeAndDeleteOldSegments(oldWriters []*segment.Writer) {
	var errOut error
	for _, w := range oldWriters {
		path := w.Path()
		if err := w.Close(); err != nil {
			errOut = multierr.Append(errOut, err)
		}
		if err := fsutil.DeleteFile(path); err != nil {
			errOut = multierr.Append(errOut, err)
		}
	}
	if errOut != nil {
		c.log.Warnw("non-fatal cleanup errors retiring old segments", "error", errOut)
	}
}

func defaultNowMillis() int64 {
	return nowMillis()
}
