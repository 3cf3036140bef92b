package errs

// ManifestError covers failures loading or persisting the id ->
// PatternLocation index and the metadata side-store: a missing id, a
// malformed record id, or a corrupt manifest.json or metadata file.
type ManifestError struct {
	*withKind
	id string
}

// NewManifestError creates a ManifestError with the given sentinel kind.
func NewManifestError(err error, kind error, code ErrorCode, msg string) *ManifestError {
	return &ManifestError{withKind: &withKind{baseError: NewBaseError(err, code, msg), kind: kind}}
}

// WithID records which record id the failure concerns.
func (me *ManifestError) WithID(id string) *ManifestError {
	me.id = id
	return me
}

// WithDetail adds contextual information while preserving the ManifestError type.
func (me *ManifestError) WithDetail(key string, value any) *ManifestError {
	me.baseError.WithDetail(key, value)
	return me
}

// ID returns the record id the failure concerns, if any.
func (me *ManifestError) ID() string { return me.id }
