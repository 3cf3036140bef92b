package checksum

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// RecordID derives the canonical 32-char lowercase hex record identifier
// for a pattern: MD5 of the interleaved amp[i], phase[i] samples, each
// encoded as a little-endian IEEE-754 double. Identity thus tracks content:
// two patterns with identical samples derive the same id.
func RecordID(amp, phase []float64) string {
	sum := md5.Sum(CanonicalBytes(amp, phase))
	return hex.EncodeToString(sum[:])
}

// CanonicalBytes produces the canonical byte encoding hashed by RecordID:
// amp[0], phase[0], amp[1], phase[1], ... each as 8 little-endian bytes.
// A SegmentRecord's payload uses a different layout (all amp samples, then
// all phase samples).
func CanonicalBytes(amp, phase []float64) []byte {
	n := len(amp)
	out := make([]byte, 0, n*16)
	var buf [8]byte
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(amp[i]))
		out = append(out, buf[:]...)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(phase[i]))
		out = append(out, buf[:]...)
	}
	return out
}
