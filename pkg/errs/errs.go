// Package errs provides structured, chainable errors for the storage engine.
//
// Every failure surfaced by this module is one of a small set of kinds
// (InvalidPattern, PatternLengthMismatch, InvalidArgument, CorruptSegment,
// SegmentIoError, CompactionFailed, NotFound) wrapped in a domain-specific
// type (SegmentError, PatternError, ManifestError, ShardError,
// CompactionError) that carries structured context — segment name, byte
// offset, record id, field name — for logging and recovery decisions.
//
// Callers that only care about the kind use errors.Is against the package's
// sentinel values (ErrCorruptSegment, ErrNotFound, ...). Callers that need
// the structured context use errors.As against the concrete type, or the
// As* helpers below.
package errs

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsSegmentError reports whether err is, or wraps, a *SegmentError.
func IsSegmentError(err error) bool {
	var se *SegmentError
	return stdErrors.As(err, &se)
}

// IsPatternError reports whether err is, or wraps, a *PatternError.
func IsPatternError(err error) bool {
	var pe *PatternError
	return stdErrors.As(err, &pe)
}

// IsManifestError reports whether err is, or wraps, a *ManifestError.
func IsManifestError(err error) bool {
	var me *ManifestError
	return stdErrors.As(err, &me)
}

// IsCompactionError reports whether err is, or wraps, a *CompactionError.
func IsCompactionError(err error) bool {
	var ce *CompactionError
	return stdErrors.As(err, &ce)
}

// AsSegmentError extracts a *SegmentError from the error chain.
func AsSegmentError(err error) (*SegmentError, bool) {
	var se *SegmentError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsManifestError extracts a *ManifestError from the error chain.
func AsManifestError(err error) (*ManifestError, bool) {
	var me *ManifestError
	if stdErrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// AsCompactionError extracts a *CompactionError from the error chain.
func AsCompactionError(err error) (*CompactionError, bool) {
	var ce *CompactionError
	if stdErrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// GetErrorCode extracts the ErrorCode from any error in the chain that
// carries one, or ErrorCodeInternal for errors that don't.
func GetErrorCode(err error) ErrorCode {
	var wk *withKind
	if stdErrors.As(err, &wk) {
		return wk.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts the structured detail map from any error in the
// chain that carries one, or an empty map for errors that don't.
func GetErrorDetails(err error) map[string]any {
	var wk *withKind
	if stdErrors.As(err, &wk) && wk.Details() != nil {
		return wk.Details()
	}
	return make(map[string]any)
}

// ClassifySegmentIOError inspects a filesystem error encountered while
// opening, writing, or syncing a segment file and returns a SegmentError
// with the most specific code it can determine (permission, disk-full,
// read-only filesystem, or a generic I/O failure).
func ClassifySegmentIOError(err error, segmentName string) *SegmentError {
	if os.IsPermission(err) {
		return NewSegmentError(err, ErrSegmentIO, ErrorCodePermission, "insufficient permissions on segment file").
			WithSegmentName(segmentName)
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewSegmentError(err, ErrSegmentIO, ErrorCodeDiskFull, "insufficient disk space for segment file").
					WithSegmentName(segmentName)
			case syscall.EROFS:
				return NewSegmentError(err, ErrSegmentIO, ErrorCodeReadonlyFS, "segment directory is on a read-only filesystem").
					WithSegmentName(segmentName)
			}
		}
	}

	return NewSegmentError(err, ErrSegmentIO, ErrorCodeIO, "segment i/o failure").WithSegmentName(segmentName)
}
