// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientCapacity = errors.New("insufficient buffer capacity")
	ErrRuntimeClosed        = errors.New("runtime is shut down")
	ErrIDMismatch           = errors.New("response id does not match request id")
	ErrResponseTooLarge     = errors.New("response exceeds maximum size")
)

// Kind classifies a failure. Only its name reaches a foreign caller, as the
// prefix of the recorded error message.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindTransport
	KindRemote
	KindMarshal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindRemote:
		return "rpc"
	case KindMarshal:
		return "marshal"
	default:
		return "internal"
	}
}

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind Kind
	// Code is the JSON-RPC error code for KindRemote errors, zero otherwise.
	Code    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case msg == "" && e.Cause != nil:
		msg = e.Cause.Error()
	case e.Cause != nil:
		msg = msg + ": " + e.Cause.Error()
	}
	if e.Kind == KindRemote && e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf reports the Kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func transportError(msg string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: msg, Cause: cause}
}

// asError returns err as an *Error, wrapping foreign errors as internal.
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Cause: err}
}
