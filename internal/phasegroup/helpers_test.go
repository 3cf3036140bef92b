package phasegroup_test

import (
	"encoding/hex"

	"github.com/resonancedb/resonancedb/internal/segment"
)

func newTestWriter(path string) (*segment.Writer, error) {
	return segment.OpenWriter(segment.WriterConfig{Path: path, ChecksumLength: 8, TargetBytes: 1 << 20})
}

func idBytes(n byte) [16]byte {
	var out [16]byte
	out[0] = n
	return out
}

func hexID(n byte) string {
	b := idBytes(n)
	return hex.EncodeToString(b[:])
}
