package errs

import stdErrors "errors"

// Sentinel kinds. These mirror the error-kind sum type of the storage
// design: every domain error below carries one of these as its kind so
// that errors.Is(err, errs.ErrCorruptSegment) works regardless of how much
// structured context (segment name, offset, field...) has been attached.
var (
	ErrInvalidPattern       = stdErrors.New("pattern amplitude/phase length mismatch or non-finite value")
	ErrPatternLengthMismatch = stdErrors.New("resonance kernel inputs have differing lengths")
	ErrInvalidArgument      = stdErrors.New("invalid argument")
	ErrCorruptSegment       = stdErrors.New("segment is corrupt")
	ErrSegmentIO            = stdErrors.New("segment i/o failure")
	ErrCompactionFailed     = stdErrors.New("compaction failed")
	ErrNotFound             = stdErrors.New("id not found")
)

// withKind augments baseError with a sentinel kind so errors.Is can match
// on the sum-type value regardless of the concrete wrapping type.
type withKind struct {
	*baseError
	kind error
}

// Is reports whether target is this error's sentinel kind, or is satisfied
// by the wrapped cause.
func (w *withKind) Is(target error) bool {
	if target == w.kind {
		return true
	}
	return stdErrors.Is(w.cause, target)
}
