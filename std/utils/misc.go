package utils

import (
	"encoding/binary"
	"time"

	"github.com/ndnrtr/fwcore/std/types/optional"
)

// NDNdVersion is the version string reported by the daemon's --version flag.
const NDNdVersion = "0.0.1-fwcore"

// IdPtr returns a pointer to the provided value, useful for constructing
// optional pointer fields from literals in a single expression.
func IdPtr[T any](v T) *T {
	return &v
}

// MakeTimestamp converts a UTC time into milliseconds since the Unix epoch,
// as used by NDN Data's FreshnessPeriod and signature timestamp fields.
func MakeTimestamp(t time.Time) uint64 {
	return uint64(t.UnixMilli())
}

// ConvertNonce decodes a 4-byte big-endian nonce into a uint32, returning an
// empty Option if the input is not exactly 4 bytes.
func ConvertNonce(nonce []byte) optional.Option[uint32] {
	if len(nonce) != 4 {
		return optional.None[uint32]()
	}
	return optional.Some(binary.BigEndian.Uint32(nonce))
}

// HeaderEqual reports whether two slices share the same underlying array,
// length, and capacity - i.e. they are the same slice header.
func HeaderEqual[T any](a, b []T) bool {
	if len(a) != len(b) || cap(a) != cap(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[:1][0] == &b[:1][0]
}
