package errs

// ErrorCode is a standardized, string-valued category for an error.
type ErrorCode string

// Base codes apply across any subsystem.
const (
	ErrorCodeIO            ErrorCode = "IO_ERROR"
	ErrorCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrorCodePermission    ErrorCode = "PERMISSION_DENIED"
	ErrorCodeDiskFull      ErrorCode = "DISK_FULL"
	ErrorCodeReadonlyFS    ErrorCode = "FILESYSTEM_READONLY"
)

// Segment-specific codes cover the binary segment file lifecycle: header
// parsing, checksum verification, and the recovery of a non-committed tail.
const (
	ErrorCodeSegmentCorrupted    ErrorCode = "SEGMENT_CORRUPTED"
	ErrorCodeHeaderInvalid      ErrorCode = "SEGMENT_HEADER_INVALID"
	ErrorCodeChecksumMismatch   ErrorCode = "SEGMENT_CHECKSUM_MISMATCH"
	ErrorCodeTruncatedRecord    ErrorCode = "SEGMENT_TRUNCATED_RECORD"
)

// Compaction-specific codes.
const (
	ErrorCodeCompactionFailed ErrorCode = "COMPACTION_FAILED"
	ErrorCodeRenameExhausted  ErrorCode = "COMPACTION_RENAME_EXHAUSTED"
)

// Pattern/kernel-specific codes.
const (
	ErrorCodeLengthMismatch ErrorCode = "PATTERN_LENGTH_MISMATCH"
	ErrorCodeInvalidPattern ErrorCode = "PATTERN_INVALID"
)

// Manifest/shard-specific codes.
const (
	ErrorCodeManifestCorrupted ErrorCode = "MANIFEST_CORRUPTED"
	ErrorCodeEmptyShardMap     ErrorCode = "SHARD_MAP_EMPTY"
	ErrorCodeUnsupportedLength ErrorCode = "CHECKSUM_LENGTH_UNSUPPORTED"
)
