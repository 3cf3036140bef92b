package phasegroup

import (
	"encoding/hex"
	"time"

	"github.com/resonancedb/resonancedb/pkg/errs"
)

// nowMillis returns the current time as milliseconds since the epoch, the
// logical timestamp compaction derives tmp/final segment names from.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// decodeRecordID parses a record's 32-char hex id back into its raw
// 16-byte MD5 form, for re-writing during compaction.
func decodeRecordID(id string) ([16]byte, error) {
	var out [16]byte
	raw, err := hex.DecodeString(id)
	if err != nil || len(raw) != 16 {
		return out, errs.NewManifestError(
			errs.ErrInvalidArgument, errs.ErrInvalidArgument, errs.ErrorCodeInvalidInput, "malformed record id",
		).WithID(id)
	}
	copy(out[:], raw)
	return out, nil
}
