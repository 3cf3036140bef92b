package errs_test

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonancedb/resonancedb/pkg/errs"
)

func TestSegmentErrorIsSentinelKind(t *testing.T) {
	err := errs.NewSegmentError(
		stdErrors.New("bad magic"), errs.ErrCorruptSegment, errs.ErrorCodeSegmentCorrupted, "corrupt header",
	).WithSegmentName("seg-0.segment").WithOffset(27)

	assert.True(t, stdErrors.Is(err, errs.ErrCorruptSegment))
	assert.False(t, stdErrors.Is(err, errs.ErrNotFound))
	assert.Equal(t, "seg-0.segment", err.SegmentName())
	assert.Equal(t, int64(27), err.Offset())
}

func TestIsSegmentErrorAndAsSegmentError(t *testing.T) {
	err := errs.NewSegmentError(nil, errs.ErrSegmentIO, errs.ErrorCodeIO, "i/o failure")

	require.True(t, errs.IsSegmentError(err))
	se, ok := errs.AsSegmentError(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorCodeIO, se.Code())

	assert.False(t, errs.IsManifestError(err))
	assert.False(t, errs.IsCompactionError(err))
	assert.False(t, errs.IsPatternError(err))
}

func TestWrappedErrorStillMatchesSentinel(t *testing.T) {
	inner := errs.NewManifestError(nil, errs.ErrNotFound, errs.ErrorCodeNotFound, "record id not found").WithID("abc")
	wrapped := stdErrors.New("outer: " + inner.Error())

	// A plain fmt-wrapped error loses the chain; but errors.Is against the
	// structured error itself (not a re-wrapped string) must still work.
	assert.True(t, stdErrors.Is(inner, errs.ErrNotFound))
	assert.False(t, stdErrors.Is(wrapped, errs.ErrNotFound))

	me, ok := errs.AsManifestError(inner)
	require.True(t, ok)
	assert.Equal(t, "abc", me.ID())
}

func TestGetErrorCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, errs.ErrorCodeInternal, errs.GetErrorCode(stdErrors.New("plain")))

	err := errs.NewPatternError(nil, errs.ErrInvalidPattern, errs.ErrorCodeInvalidPattern, "bad pattern")
	assert.Equal(t, errs.ErrorCodeInvalidPattern, errs.GetErrorCode(err))
}

func TestGetErrorDetails(t *testing.T) {
	err := errs.NewCompactionError(nil, errs.ErrCompactionFailed, errs.ErrorCodeRenameExhausted, "rename exhausted").
		WithGroupBase("phase-0").WithDetail("attempts", 10)

	details := errs.GetErrorDetails(err)
	assert.Equal(t, 10, details["attempts"])

	assert.Empty(t, errs.GetErrorDetails(stdErrors.New("plain")))
}

func TestClassifySegmentIOErrorDefaultsToGenericIO(t *testing.T) {
	err := errs.ClassifySegmentIOError(stdErrors.New("boom"), "seg-1.segment")
	assert.Equal(t, errs.ErrorCodeIO, err.Code())
	assert.Equal(t, "seg-1.segment", err.SegmentName())
	assert.True(t, stdErrors.Is(err, errs.ErrSegmentIO))
}

func TestCompactionErrorFluentBuilders(t *testing.T) {
	err := errs.NewCompactionError(nil, errs.ErrCompactionFailed, errs.ErrorCodeRenameExhausted, "exhausted").
		WithGroupBase("phase-3").
		WithTmpName("phase-3-tmp-merged-123.segment").
		WithAttempts(10)

	assert.Equal(t, "phase-3", err.GroupBase())
	assert.Equal(t, "phase-3-tmp-merged-123.segment", err.TmpName())
	assert.Equal(t, 10, err.Attempts())
}
