package errs

// SegmentError is a specialized error for segment file I/O and format
// failures: bad magic, checksum mismatch, truncated records, and the
// underlying filesystem errors a SegmentWriter/SegmentReader can hit.
type SegmentError struct {
	*withKind
	segmentName string
	offset      int64
}

// NewSegmentError creates a SegmentError with the given sentinel kind.
func NewSegmentError(err error, kind error, code ErrorCode, msg string) *SegmentError {
	return &SegmentError{withKind: &withKind{baseError: NewBaseError(err, code, msg), kind: kind}}
}

// WithSegmentName records which segment file was involved.
func (se *SegmentError) WithSegmentName(name string) *SegmentError {
	se.segmentName = name
	return se
}

// WithOffset records the byte offset within the segment where the failure occurred.
func (se *SegmentError) WithOffset(offset int64) *SegmentError {
	se.offset = offset
	return se
}

// WithDetail adds contextual information while preserving the SegmentError type.
func (se *SegmentError) WithDetail(key string, value any) *SegmentError {
	se.baseError.WithDetail(key, value)
	return se
}

// SegmentName returns the segment file name involved in the error.
func (se *SegmentError) SegmentName() string { return se.segmentName }

// Offset returns the byte offset within the segment where the failure occurred.
func (se *SegmentError) Offset() int64 { return se.offset }
