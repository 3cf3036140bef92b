// Package segfmt implements the on-disk binary layout shared by every
// segment file: the fixed BinaryHeader and the variable-length
// SegmentRecord it prefixes.
package segfmt

import (
	"encoding/binary"

	"github.com/resonancedb/resonancedb/pkg/errs"
)

// Magic is the fixed 4-byte little-endian magic number ("RDSN") every
// segment file begins with.
const Magic uint32 = 0x5244534E

// Version is the current on-disk format version.
const Version uint16 = 1

// fixedHeaderBytes is the size of the header excluding the variable-width
// checksum field and its trailing alignment padding:
// magic(4) + version(2) + timestamp(8) + recordCount(4) + lastOffset(8) + commitFlag(1) = 27.
const fixedHeaderBytes = 27

// BinaryHeader is the fixed-layout prefix of every segment file.
type BinaryHeader struct {
	Magic          uint32
	Version        uint16
	Timestamp      int64
	RecordCount    uint32
	LastOffset     uint64
	Checksum       uint64
	CommitFlag     uint8
	ChecksumLength int // 4 or 8; not itself persisted, carried out-of-band by the caller
}

// HeaderSize returns align4(27 + checksumLength), the total on-disk size of
// a header using the given checksum width.
func HeaderSize(checksumLength int) int {
	return align4(fixedHeaderBytes + checksumLength)
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// Encode serializes h into a HeaderSize(h.ChecksumLength)-byte buffer.
func (h BinaryHeader) Encode() ([]byte, error) {
	if h.ChecksumLength != 4 && h.ChecksumLength != 8 {
		return nil, errs.NewSegmentError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"unsupported checksum length",
		).WithDetail("length", h.ChecksumLength)
	}

	size := HeaderSize(h.ChecksumLength)
	buf := make([]byte, size)

	off := 0
	binary.LittleEndian.PutUint32(buf[off:], h.Magic)
	off += 4
	binary.LittleEndian.PutUint16(buf[off:], h.Version)
	off += 2
	binary.LittleEndian.PutUint64(buf[off:], uint64(h.Timestamp))
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], h.RecordCount)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], h.LastOffset)
	off += 8

	switch h.ChecksumLength {
	case 4:
		binary.LittleEndian.PutUint32(buf[off:], uint32(h.Checksum))
	case 8:
		binary.LittleEndian.PutUint64(buf[off:], h.Checksum)
	}
	off += h.ChecksumLength

	buf[off] = h.CommitFlag
	// remaining bytes (alignment padding) stay zero.

	return buf, nil
}

// DecodeHeader parses a BinaryHeader from buf, given the checksum width in
// use. It returns a SegmentError wrapping ErrCorruptSegment if the magic
// number doesn't match.
func DecodeHeader(buf []byte, checksumLength int) (BinaryHeader, error) {
	size := HeaderSize(checksumLength)
	if len(buf) < size {
		return BinaryHeader{}, errs.NewSegmentError(
			errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeSegmentCorrupted,
			"segment file shorter than header size",
		).WithDetail("haveBytes", len(buf)).WithDetail("wantBytes", size)
	}

	off := 0
	magic := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if magic != Magic {
		return BinaryHeader{}, errs.NewSegmentError(
			errs.ErrCorruptSegment, errs.ErrCorruptSegment, errs.ErrorCodeHeaderInvalid,
			"segment header has invalid magic",
		).WithDetail("magic", magic)
	}

	version := binary.LittleEndian.Uint16(buf[off:])
	off += 2
	timestamp := int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	recordCount := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	lastOffset := binary.LittleEndian.Uint64(buf[off:])
	off += 8

	var checksum uint64
	switch checksumLength {
	case 4:
		checksum = uint64(binary.LittleEndian.Uint32(buf[off:]))
	case 8:
		checksum = binary.LittleEndian.Uint64(buf[off:])
	default:
		return BinaryHeader{}, errs.NewSegmentError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"unsupported checksum length",
		).WithDetail("length", checksumLength)
	}
	off += checksumLength

	commitFlag := buf[off]

	return BinaryHeader{
		Magic:          magic,
		Version:        version,
		Timestamp:      timestamp,
		RecordCount:    recordCount,
		LastOffset:     lastOffset,
		Checksum:       checksum,
		CommitFlag:     commitFlag,
		ChecksumLength: checksumLength,
	}, nil
}
