// Package checksum implements the store's two checksum algorithms — CRC32
// and seeded XXH64 — selected by width, plus the MD5-based canonical
// record-id derivation.
package checksum

import (
	"encoding/binary"
	"hash"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
	"github.com/resonancedb/resonancedb/pkg/errs"
)

// Seed is the fixed XXH64 seed used for the 8-byte checksum variant.
const Seed uint64 = 0x9747b28c

// Of computes the checksum of data for the given width: 4 selects CRC32
// (IEEE polynomial), 8 selects XXH64 seeded with Seed. Any other width
// returns an InvalidArgument error.
func Of(data []byte, length int) (uint64, error) {
	switch length {
	case 4:
		return uint64(crc32.ChecksumIEEE(data)), nil
	case 8:
		return xxh64Seeded(data), nil
	default:
		return 0, errs.NewSegmentError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"unsupported checksum length",
		).WithDetail("length", length)
	}
}

// xxh64Seeded computes XXH64 of data with Seed folded in ahead of the
// payload: the cespare/xxhash/v2 digest doesn't expose a seeded
// constructor, so the seed is mixed in as an 8-byte little-endian prefix
// written into the running digest before the payload bytes.
func xxh64Seeded(data []byte) uint64 {
	d := xxhash.New()
	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], Seed)
	d.Write(seedBuf[:])
	d.Write(data)
	return d.Sum64()
}

// Encode writes a checksum value into a length-byte little-endian buffer.
func Encode(value uint64, length int) []byte {
	buf := make([]byte, length)
	switch length {
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(value))
	case 8:
		binary.LittleEndian.PutUint64(buf, value)
	}
	return buf
}

// Decode reads a checksum value from a length-byte little-endian buffer.
func Decode(buf []byte, length int) uint64 {
	switch length {
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	case 8:
		return binary.LittleEndian.Uint64(buf)
	}
	return 0
}

// Accumulator folds payload bytes into a running checksum as they're
// written, rather than rehashing the whole data region on every flush. Its
// final Sum matches what Of(allBytes, length) would compute.
type Accumulator struct {
	length int
	crc    hash.Hash32
	xxh    *xxhash.Digest
}

// NewAccumulator builds an Accumulator for the given checksum width (see
// Of for the width-to-algorithm mapping). The XXH64 seed is written into
// the running digest immediately, matching xxh64Seeded's prefix trick.
func NewAccumulator(length int) (*Accumulator, error) {
	switch length {
	case 4:
		return &Accumulator{length: length, crc: crc32.NewIEEE()}, nil
	case 8:
		d := xxhash.New()
		var seedBuf [8]byte
		binary.LittleEndian.PutUint64(seedBuf[:], Seed)
		d.Write(seedBuf[:])
		return &Accumulator{length: length, xxh: d}, nil
	default:
		return nil, errs.NewSegmentError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput,
			"unsupported checksum length",
		).WithDetail("length", length)
	}
}

// Write folds p into the running checksum.
func (a *Accumulator) Write(p []byte) {
	if a.crc != nil {
		a.crc.Write(p)
		return
	}
	a.xxh.Write(p)
}

// Sum returns the checksum of every byte written so far. It does not reset
// or otherwise disturb the running state, so writes may continue after
// calling Sum and a later Sum reflects the combined bytes.
func (a *Accumulator) Sum() uint64 {
	if a.crc != nil {
		return uint64(a.crc.Sum32())
	}
	return a.xxh.Sum64()
}
