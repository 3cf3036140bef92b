package segfmt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonancedb/resonancedb/internal/segfmt"
)

func TestHeaderSizeIsAligned(t *testing.T) {
	assert.Equal(t, 0, segfmt.HeaderSize(4)%4)
	assert.Equal(t, 0, segfmt.HeaderSize(8)%4)
	assert.Equal(t, 32, segfmt.HeaderSize(4)) // 27+4=31 -> align4 -> 32
	assert.Equal(t, 36, segfmt.HeaderSize(8)) // 27+8=35 -> align4 -> 36
}

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := segfmt.BinaryHeader{
		Magic:          segfmt.Magic,
		Version:        segfmt.Version,
		Timestamp:      1234567890,
		RecordCount:    3,
		LastOffset:     128,
		Checksum:       0xDEADBEEF,
		CommitFlag:     1,
		ChecksumLength: 8,
	}

	buf, err := h.Encode()
	require.NoError(t, err)
	assert.Len(t, buf, segfmt.HeaderSize(8))

	decoded, err := segfmt.DecodeHeader(buf, 8)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestHeaderEncodeRejectsUnsupportedChecksumLength(t *testing.T) {
	h := segfmt.BinaryHeader{ChecksumLength: 3}
	_, err := h.Encode()
	require.Error(t, err)
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	h := segfmt.BinaryHeader{Magic: 0xBAD, ChecksumLength: 8}
	buf, err := h.Encode()
	require.NoError(t, err)

	_, err = segfmt.DecodeHeader(buf, 8)
	require.Error(t, err)
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	_, err := segfmt.DecodeHeader([]byte{1, 2, 3}, 8)
	require.Error(t, err)
}

func TestRecordEncodeDecodeRoundTrip(t *testing.T) {
	rec := segfmt.SegmentRecord{
		ID:    [16]byte{1, 2, 3, 4},
		Amp:   []float64{1.5, 2.5},
		Phase: []float64{0.1, -0.2},
	}

	buf := segfmt.Encode(rec)
	assert.Len(t, buf, segfmt.EncodedSize(2))

	decoded, n, err := segfmt.DecodeRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, rec.ID, decoded.ID)
	assert.Equal(t, rec.Amp, decoded.Amp)
	assert.Equal(t, rec.Phase, decoded.Phase)
}

func TestDecodeRecordRejectsTruncatedHeader(t *testing.T) {
	_, _, err := segfmt.DecodeRecord([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeRecordRejectsTruncatedPayload(t *testing.T) {
	rec := segfmt.SegmentRecord{ID: [16]byte{9}, Amp: []float64{1}, Phase: []float64{2}}
	buf := segfmt.Encode(rec)

	_, _, err := segfmt.DecodeRecord(buf[:len(buf)-4])
	require.Error(t, err)
}

func TestDecodeRecordConsecutiveRecordsAdvanceCorrectly(t *testing.T) {
	rec1 := segfmt.SegmentRecord{ID: [16]byte{1}, Amp: []float64{1}, Phase: []float64{0}}
	rec2 := segfmt.SegmentRecord{ID: [16]byte{2}, Amp: []float64{2, 3}, Phase: []float64{0, 1}}

	buf := append(segfmt.Encode(rec1), segfmt.Encode(rec2)...)

	first, n1, err := segfmt.DecodeRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, rec1.ID, first.ID)

	second, _, err := segfmt.DecodeRecord(buf[n1:])
	require.NoError(t, err)
	assert.Equal(t, rec2.ID, second.ID)
	assert.Equal(t, rec2.Amp, second.Amp)
}
