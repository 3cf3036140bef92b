package segfmt

import (
	"encoding/binary"
	"math"

	"github.com/resonancedb/resonancedb/pkg/errs"
)

// IDSize is the width of a raw MD5 record id, in bytes.
const IDSize = 16

// payloadLenSize is the width of the payloadLen field, in bytes.
const payloadLenSize = 4

// SegmentRecord is one on-disk record: a raw 16-byte MD5 id followed by the
// amp sample array and then the phase sample array (not interleaved).
type SegmentRecord struct {
	ID    [IDSize]byte
	Amp   []float64
	Phase []float64
}

// EncodedSize returns the total on-disk size of a record with n samples.
func EncodedSize(n int) int {
	return IDSize + payloadLenSize + n*16
}

// Encode serializes r as id(16) + payloadLen(u32) + amp(N*f64) + phase(N*f64),
// all little-endian.
func Encode(r SegmentRecord) []byte {
	n := len(r.Amp)
	buf := make([]byte, EncodedSize(n))

	copy(buf[:IDSize], r.ID[:])
	binary.LittleEndian.PutUint32(buf[IDSize:IDSize+payloadLenSize], uint32(16*n))

	off := IDSize + payloadLenSize
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(r.Amp[i]))
		off += 8
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(r.Phase[i]))
		off += 8
	}

	return buf
}

// DecodeRecord parses one SegmentRecord starting at the beginning of buf.
// It returns the record and the number of bytes consumed. It returns a
// SegmentError wrapping ErrCorruptSegment if buf is too short to hold a
// complete record (a truncated tail on an open segment).
func DecodeRecord(buf []byte) (SegmentRecord, int, error) {
	if len(buf) < IDSize+payloadLenSize {
		return SegmentRecord{}, 0, errs.NewSegmentError(
			errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeTruncatedRecord,
			"truncated record header",
		)
	}

	var rec SegmentRecord
	copy(rec.ID[:], buf[:IDSize])

	payloadLen := binary.LittleEndian.Uint32(buf[IDSize : IDSize+payloadLenSize])
	if payloadLen%16 != 0 {
		return SegmentRecord{}, 0, errs.NewSegmentError(
			errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeTruncatedRecord,
			"payload length not a multiple of 16",
		).WithDetail("payloadLen", payloadLen)
	}
	n := int(payloadLen / 16)

	total := EncodedSize(n)
	if len(buf) < total {
		return SegmentRecord{}, 0, errs.NewSegmentError(
			errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeTruncatedRecord,
			"truncated record payload",
		).WithDetail("haveBytes", len(buf)).WithDetail("wantBytes", total)
	}

	off := IDSize + payloadLenSize
	rec.Amp = make([]float64, n)
	for i := 0; i < n; i++ {
		rec.Amp[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		off += 8
	}
	rec.Phase = make([]float64, n)
	for i := 0; i < n; i++ {
		rec.Phase[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		off += 8
	}

	return rec, total, nil
}
