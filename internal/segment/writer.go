// Package segment implements SegmentWriter and SegmentReader: the pair
// that owns one on-disk segment file, its BinaryHeader, and the append-only
// data region of SegmentRecords.
package segment

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/internal/segfmt"
	"github.com/resonancedb/resonancedb/pkg/checksum"
	"github.com/resonancedb/resonancedb/pkg/errs"
)

// DefaultTargetBytes is the segment byte budget getFillRatio() measures
// approxSize against.
const DefaultTargetBytes = 32 * 1024 * 1024

// Writer owns one segment file: it appends records, maintains the header,
// and reports the sizing signals the owning phase segment group uses to
// decide on rotation and compaction. A Writer is not safe for concurrent
// writes; callers serialize through the owning group's lock.
type Writer struct {
	mu sync.Mutex

	path           string
	name           string
	file           *os.File
	header         segfmt.BinaryHeader
	checksumLength int
	targetBytes    int64
	dataBytes      int64 // running checksum accumulator input size, excludes header
	accum          *checksum.Accumulator

	log *zap.SugaredLogger
}

// WriterConfig configures OpenWriter.
type WriterConfig struct {
	Path           string
	ChecksumLength int
	TargetBytes    int64
	Logger         *zap.SugaredLogger
}

// OpenWriter opens (or creates) the segment file at cfg.Path.
//
// If the file exists and is at least header-sized, its header is read and
// validated. If commitFlag=0, the data region up to lastOffset is treated
// as authoritative and anything beyond it is truncated (recovery from an
// unclean shutdown). If the file is smaller than the header size, a fresh
// header is written with count=0, lastOffset=headerSize, commitFlag=0.
func OpenWriter(cfg WriterConfig) (*Writer, error) {
	checksumLength := cfg.ChecksumLength
	if checksumLength != 4 && checksumLength != 8 {
		return nil, errs.NewSegmentError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"unsupported checksum length",
		).WithDetail("length", checksumLength)
	}

	targetBytes := cfg.TargetBytes
	if targetBytes <= 0 {
		targetBytes = DefaultTargetBytes
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	name := segmentBaseName(cfg.Path)

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errs.ClassifySegmentIOError(err, name)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errs.ClassifySegmentIOError(err, name).WithDetail("op", "stat")
	}

	headerSize := segfmt.HeaderSize(checksumLength)

	accum, err := checksum.NewAccumulator(checksumLength)
	if err != nil {
		file.Close()
		return nil, err
	}

	w := &Writer{
		path:           cfg.Path,
		name:           name,
		file:           file,
		checksumLength: checksumLength,
		targetBytes:    targetBytes,
		accum:          accum,
		log:            log,
	}

	if info.Size() >= int64(headerSize) {
		if err := w.recover(headerSize); err != nil {
			file.Close()
			return nil, err
		}
	} else {
		w.header = segfmt.BinaryHeader{
			Magic:          segfmt.Magic,
			Version:        segfmt.Version,
			RecordCount:    0,
			LastOffset:     uint64(headerSize),
			Checksum:       0,
			CommitFlag:     0,
			ChecksumLength: checksumLength,
		}
		if err := w.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
		w.dataBytes = 0
	}

	log.Infow("opened segment writer",
		"name", w.name, "lastOffset", w.header.LastOffset, "recordCount", w.header.RecordCount)

	return w, nil
}

// recover reads and validates the existing header, truncating a dangling
// tail if the segment was left open (commitFlag=0) by an unclean shutdown.
func (w *Writer) recover(headerSize int) error {
	buf := make([]byte, headerSize)
	if _, err := w.file.ReadAt(buf, 0); err != nil {
		return errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "read-header")
	}

	header, err := segfmt.DecodeHeader(buf, w.checksumLength)
	if err != nil {
		return err
	}

	if header.CommitFlag == 0 {
		if err := w.file.Truncate(int64(header.LastOffset)); err != nil {
			return errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "recovery-truncate")
		}
		w.log.Infow("recovered open segment, truncated dangling tail",
			"name", w.name, "lastOffset", header.LastOffset)

		survivingLen := int64(header.LastOffset) - int64(headerSize)
		if survivingLen > 0 {
			surviving := make([]byte, survivingLen)
			if _, err := w.file.ReadAt(surviving, int64(headerSize)); err != nil {
				return errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "read-truncated-data-region")
			}
			w.accum.Write(surviving)
		}
	} else {
		dataLen := int64(header.LastOffset) - int64(headerSize)
		data := make([]byte, dataLen)
		if dataLen > 0 {
			if _, err := w.file.ReadAt(data, int64(headerSize)); err != nil {
				return errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "read-data-region")
			}
		}
		sum, err := checksum.Of(data, w.checksumLength)
		if err != nil {
			return err
		}
		if sum != header.Checksum {
			return errs.NewSegmentError(
				errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeChecksumMismatch,
				"segment checksum mismatch on reopen",
			).WithSegmentName(w.name)
		}
		w.accum.Write(data)
	}

	w.header = header
	w.dataBytes = int64(header.LastOffset) - int64(headerSize)
	return nil
}

func (w *Writer) writeHeader() error {
	buf, err := w.header.Encode()
	if err != nil {
		return err
	}
	if _, err := w.file.WriteAt(buf, 0); err != nil {
		return errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "write-header")
	}
	return nil
}

// Write appends the record for id, pattern at the current end of the data
// region, advances the in-memory header state, and returns the byte offset
// the record's id begins at. Not thread-safe against concurrent writes;
// callers serialize via the owning group's lock.
func (w *Writer) Write(id [16]byte, amp, phase []float64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec := segfmtRecord(id, amp, phase)
	buf := segfmt.Encode(rec)

	offset := int64(w.header.LastOffset)
	if _, err := w.file.WriteAt(buf, offset); err != nil {
		return 0, errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "write-record").WithOffset(offset)
	}

	w.header.RecordCount++
	w.header.LastOffset = uint64(offset) + uint64(len(buf))
	w.dataBytes += int64(len(buf))
	w.accum.Write(buf)

	return offset, nil
}

func segfmtRecord(id [16]byte, amp, phase []float64) segfmt.SegmentRecord {
	return segfmt.SegmentRecord{ID: id, Amp: amp, Phase: phase}
}

// Flush forces buffered bytes to the OS, takes the checksum the running
// Accumulator has built incrementally over the data region (spec.md §4.1),
// rewrites the header with commitFlag=1, then fsyncs.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.header.Checksum = w.accum.Sum()
	w.header.CommitFlag = 1

	if err := w.writeHeader(); err != nil {
		return err
	}

	if err := w.file.Sync(); err != nil {
		return errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "fsync")
	}

	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Close(); err != nil {
		return errs.ClassifySegmentIOError(err, w.name).WithDetail("op", "close")
	}
	return nil
}

// ApproxSize returns the current on-disk size of the segment (header plus
// data region), without requiring a flush.
func (w *Writer) ApproxSize() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(w.header.LastOffset)
}

// GetFillRatio returns ApproxSize() / target, where target is the
// configured segment byte budget.
func (w *Writer) GetFillRatio() float64 {
	return float64(w.ApproxSize()) / float64(w.targetBytes)
}

// IsOverflow reports whether ApproxSize() has reached maxBytes. The
// writer's own TargetBytes budget is not consulted here; it only feeds
// GetFillRatio.
func (w *Writer) IsOverflow(maxBytes uint64) bool {
	return w.ApproxSize() >= int64(maxBytes)
}

// GetSegmentName returns the base file name of the underlying segment file.
func (w *Writer) GetSegmentName() string {
	return w.name
}

// Path returns the full filesystem path of the underlying segment file.
func (w *Writer) Path() string {
	return w.path
}

// RecordCount returns the number of records currently written.
func (w *Writer) RecordCount() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.header.RecordCount
}

func segmentBaseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

var _ io.Closer = (*Writer)(nil)
