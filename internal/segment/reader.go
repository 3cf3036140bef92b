package segment

import (
	"encoding/hex"
	"os"

	"go.uber.org/zap"

	"github.com/resonancedb/resonancedb/internal/segfmt"
	"github.com/resonancedb/resonancedb/pkg/checksum"
	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/waveform"
)

// Record pairs a decoded pattern with the record id it was stored under and
// the offset it was read from.
type Record struct {
	ID     string
	Offset int64
	Amp    []float64
	Phase  []float64
}

// Reader provides read-only access to a committed or in-flight segment
// file: it validates the header's checksum, then enumerates or
// offset-reads records in the data region.
type Reader struct {
	name           string
	file           *os.File
	header         segfmt.BinaryHeader
	checksumLength int
	headerSize     int
	log            *zap.SugaredLogger
}

// ReaderConfig configures OpenReader.
type ReaderConfig struct {
	Path           string
	ChecksumLength int
	Logger         *zap.SugaredLogger
}

// OpenReader opens path for reading, parses its header, and validates the
// magic number. If the segment is committed (commitFlag=1), the checksum
// over the data region [headerSize, lastOffset) is recomputed and compared
// to the header's; a mismatch fails with CorruptSegment. If the segment is
// still open (commitFlag=0), the reader is tolerant of a truncated tail:
// enumeration stops cleanly at the first incomplete record instead of
// erroring.
func OpenReader(cfg ReaderConfig) (*Reader, error) {
	checksumLength := cfg.ChecksumLength
	if checksumLength != 4 && checksumLength != 8 {
		return nil, errs.NewSegmentError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"unsupported checksum length",
		).WithDetail("length", checksumLength)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	name := segmentBaseName(cfg.Path)

	file, err := os.Open(cfg.Path)
	if err != nil {
		return nil, errs.ClassifySegmentIOError(err, name)
	}

	headerSize := segfmt.HeaderSize(checksumLength)
	buf := make([]byte, headerSize)
	if _, err := file.ReadAt(buf, 0); err != nil {
		file.Close()
		return nil, errs.ClassifySegmentIOError(err, name).WithDetail("op", "read-header")
	}

	header, err := segfmt.DecodeHeader(buf, checksumLength)
	if err != nil {
		file.Close()
		return nil, err
	}

	if header.CommitFlag == 1 {
		dataLen := int64(header.LastOffset) - int64(headerSize)
		data := make([]byte, dataLen)
		if dataLen > 0 {
			if _, err := file.ReadAt(data, int64(headerSize)); err != nil {
				file.Close()
				return nil, errs.ClassifySegmentIOError(err, name).WithDetail("op", "read-data-region")
			}
		}
		sum, err := checksum.Of(data, checksumLength)
		if err != nil {
			file.Close()
			return nil, err
		}
		if sum != header.Checksum {
			file.Close()
			return nil, errs.NewSegmentError(
				errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeChecksumMismatch,
				"segment checksum mismatch",
			).WithSegmentName(name)
		}
	}

	return &Reader{
		name:           name,
		file:           file,
		header:         header,
		checksumLength: checksumLength,
		headerSize:     headerSize,
		log:            log,
	}, nil
}

// GetHeader returns the parsed BinaryHeader.
func (r *Reader) GetHeader() segfmt.BinaryHeader {
	return r.header
}

// ReadWithID positions at offset, decodes one record, and returns its
// hex-encoded id, the pattern's amp/phase arrays, and the offset of the
// next record.
func (r *Reader) ReadWithID(offset int64) (Record, int64, error) {
	tail := int64(r.header.LastOffset) - offset
	if tail <= 0 {
		return Record{}, offset, errs.NewSegmentError(
			errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeTruncatedRecord,
			"offset at or past end of data region",
		).WithSegmentName(r.name).WithOffset(offset)
	}

	buf := make([]byte, tail)
	n, err := r.file.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return Record{}, offset, errs.ClassifySegmentIOError(err, r.name).WithOffset(offset)
	}
	buf = buf[:n]

	rec, consumed, err := segfmt.DecodeRecord(buf)
	if err != nil {
		return Record{}, offset, err
	}

	return Record{
		ID:     hex.EncodeToString(rec.ID[:]),
		Offset: offset,
		Amp:    rec.Amp,
		Phase:  rec.Phase,
	}, offset + int64(consumed), nil
}

// ReadAllWithID enumerates every record in the data region starting at the
// header boundary. On an open segment, it stops cleanly at the first
// incomplete record instead of failing.
func (r *Reader) ReadAllWithID() ([]Record, error) {
	var records []Record
	offset := int64(r.headerSize)

	for offset < int64(r.header.LastOffset) {
		rec, next, err := r.ReadWithID(offset)
		if err != nil {
			if r.header.CommitFlag == 0 && errs.GetErrorCode(err) == errs.ErrorCodeTruncatedRecord {
				break
			}
			return nil, err
		}
		records = append(records, rec)
		offset = next
	}

	return records, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ToWavePattern converts a Record's raw arrays into a validated WavePattern.
func (rec Record) ToWavePattern() (waveform.WavePattern, error) {
	return waveform.New(rec.Amp, rec.Phase)
}
