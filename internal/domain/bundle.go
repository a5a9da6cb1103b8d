package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RawBundle is the unprocessed input of one dataset load: the native
// per-quarter JSON, the optional secondary quarter export, and the optional
// station location file.
type RawBundle struct {
	Native    []byte
	Secondary []byte
	Locations []byte
	// ReadAt is when the source was read.
	ReadAt time.Time
}

// Version is a deterministic content hash of the bundle. Identical inputs
// produce the same version, so reloads of unchanged files are detectable.
func (b RawBundle) Version() string {
	h := sha256.New()
	for _, part := range [][]byte{b.Native, b.Secondary, b.Locations} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
