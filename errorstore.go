// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import "sync"

// MaxErrorLen is the maximum length of a recorded error message in bytes.
const MaxErrorLen = 255

// ErrorStore holds the message of the most recent failure.
//
// A store is shared by every thread calling into the same Boundary. Two
// failing calls on different threads race to overwrite it, so a caller must
// read the error before issuing its next call if attribution matters.
// Successful calls leave the slot untouched.
type ErrorStore struct {
	mu  sync.Mutex
	msg []byte
}

// Record replaces the stored message with err's message. A nil err is
// ignored.
func (s *ErrorStore) Record(err error) {
	if err == nil {
		return
	}
	s.RecordMessage(err.Error())
}

// RecordMessage replaces the stored message, truncated to MaxErrorLen bytes
// on a code-point boundary.
func (s *ErrorStore) RecordMessage(msg string) {
	b := truncateUTF8([]byte(msg), MaxErrorLen)

	s.mu.Lock()
	s.msg = b
	s.mu.Unlock()
}

// Message returns the stored message and whether one is set.
func (s *ErrorStore) Message() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.msg == nil {
		return "", false
	}
	return string(s.msg), true
}

// CopyTo copies up to len(buf) bytes of the stored message into buf without
// splitting a multi-byte sequence and returns the number of bytes written.
// No terminator is written.
func (s *ErrorStore) CopyTo(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return CopyTruncated(buf, s.msg)
}

// Clear empties the store.
func (s *ErrorStore) Clear() {
	s.mu.Lock()
	s.msg = nil
	s.mu.Unlock()
}
