package errs

// ShardError covers phase-shard-selector configuration failures: an empty
// explicit range map or a non-positive hash-mode shard count.
type ShardError struct {
	*withKind
	segmentBase string
}

// NewShardError creates a ShardError with the given sentinel kind.
func NewShardError(err error, kind error, code ErrorCode, msg string) *ShardError {
	return &ShardError{withKind: &withKind{baseError: NewBaseError(err, code, msg), kind: kind}}
}

// WithSegmentBase records which segment base name the failure concerns.
func (se *ShardError) WithSegmentBase(base string) *ShardError {
	se.segmentBase = base
	return se
}

// WithDetail adds contextual information while preserving the ShardError type.
func (se *ShardError) WithDetail(key string, value any) *ShardError {
	se.baseError.WithDetail(key, value)
	return se
}

// SegmentBase returns the segment base name the failure concerns, if any.
func (se *ShardError) SegmentBase() string { return se.segmentBase }
