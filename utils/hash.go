package utils

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes an ordered set of encoded frames into one hex token.
// Frame order matters: a reordered slideshow is a different slideshow. The
// per-frame length prefix keeps concatenation ambiguity out of the digest.
func Fingerprint(frames [][]byte) string {
	d := xxhash.New()
	var lenBuf [8]byte
	for _, frame := range frames {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(frame)))
		d.Write(lenBuf[:])
		d.Write(frame)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
