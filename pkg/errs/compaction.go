package errs

// CompactionError reports a failed DefaultSegmentCompactor run: the merge
// scan succeeded but the final atomic rename exhausted its retry budget.
// Per spec, the store remains usable on the pre-compaction layout; the
// tmp file is left for the next compaction attempt to clean up.
type CompactionError struct {
	*withKind
	groupBase string
	tmpName   string
	attempts  int
}

// NewCompactionError creates a CompactionError with the given sentinel kind.
func NewCompactionError(err error, kind error, code ErrorCode, msg string) *CompactionError {
	return &CompactionError{withKind: &withKind{baseError: NewBaseError(err, code, msg), kind: kind}}
}

// WithGroupBase records which phase segment group was being compacted.
func (ce *CompactionError) WithGroupBase(base string) *CompactionError {
	ce.groupBase = base
	return ce
}

// WithTmpName records the temporary merged-segment file name.
func (ce *CompactionError) WithTmpName(name string) *CompactionError {
	ce.tmpName = name
	return ce
}

// WithAttempts records how many rename attempts were made before giving up.
func (ce *CompactionError) WithAttempts(n int) *CompactionError {
	ce.attempts = n
	return ce
}

// WithDetail adds contextual information while preserving the CompactionError type.
func (ce *CompactionError) WithDetail(key string, value any) *CompactionError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// GroupBase returns the phase segment group base name being compacted.
func (ce *CompactionError) GroupBase() string { return ce.groupBase }

// TmpName returns the temporary merged-segment file name.
func (ce *CompactionError) TmpName() string { return ce.tmpName }

// Attempts returns how many rename attempts were made before giving up.
func (ce *CompactionError) Attempts() int { return ce.attempts }
