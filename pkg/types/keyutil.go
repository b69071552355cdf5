package types

import (
	"encoding/binary"
	"time"
)

// EncodeSeconds renders an instant as the big-endian Unix-seconds prefix
// every topology and checkpoint key uses (spec §4.1, §4.2). Negative
// timestamps (before 1970) are not expected by the domain and are clamped
// to zero so keys stay monotonic with wall-clock time.
func EncodeSeconds(t time.Time) [8]byte {
	var buf [8]byte
	secs := t.Unix()
	if secs < 0 {
		secs = 0
	}
	binary.BigEndian.PutUint64(buf[:], uint64(secs))
	return buf
}

// DecodeSeconds is the inverse of EncodeSeconds.
func DecodeSeconds(buf []byte) time.Time {
	secs := binary.BigEndian.Uint64(buf)
	return time.Unix(int64(secs), 0).UTC()
}
