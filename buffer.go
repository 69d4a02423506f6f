// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"fmt"
	"math"
	"unicode/utf8"
	"unsafe"
)

// MaxResponseBufferLen is the response buffer size foreign callers are
// expected to provide. Larger buffers are accepted.
const MaxResponseBufferLen = 1024

// WriteTerminated copies payload into buf followed by a NUL byte and returns
// len(payload). If payload and its terminator do not fit, buf is left
// untouched and a KindMarshal error wrapping ErrInsufficientCapacity is
// returned; structured output is never truncated.
func WriteTerminated(buf, payload []byte) (int, error) {
	need := len(payload) + 1
	if need > len(buf) {
		return 0, &Error{
			Kind:    KindMarshal,
			Message: fmt.Sprintf("response needs %d bytes, buffer holds %d", need, len(buf)),
			Cause:   ErrInsufficientCapacity,
		}
	}
	n := copy(buf, payload)
	buf[n] = 0
	return n, nil
}

// CopyTruncated copies as much of the UTF-8 text payload into buf as fits
// without splitting a multi-byte sequence, and returns the bytes written.
// Nothing is written when buf is empty.
func CopyTruncated(buf, payload []byte) int {
	return copy(buf, truncateUTF8(payload, len(buf)))
}

// truncateUTF8 returns the longest prefix of p no longer than n bytes that
// does not end inside a multi-byte sequence.
func truncateUTF8(p []byte, n int) []byte {
	if n >= len(p) {
		return p
	}
	if n <= 0 {
		return p[:0]
	}
	cut := n
	for cut > 0 && cut > n-(utf8.UTFMax-1) && !utf8.RuneStart(p[cut]) {
		cut--
	}
	if !utf8.RuneStart(p[cut]) {
		// Not valid UTF-8 around n; there is no boundary to respect.
		cut = n
	}
	return p[:cut]
}

// ForeignBuffer views capacity bytes at ptr as a slice. A nil pointer is only
// accepted with zero capacity; it is never dereferenced.
func ForeignBuffer(ptr unsafe.Pointer, capacity uintptr) ([]byte, error) {
	if capacity > math.MaxInt {
		return nil, validationError("buffer capacity %d is out of range", capacity)
	}
	if ptr == nil {
		if capacity != 0 {
			return nil, validationError("buffer is null but capacity is %d", capacity)
		}
		return []byte{}, nil
	}
	return unsafe.Slice((*byte)(ptr), int(capacity)), nil
}
