// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import "errors"

// Kind classifies a recognition failure so the session layer can translate
// it into the exact OCRResult.error_message strings the wire contract
// promises.
type Kind int

const (
	// KindNone indicates success.
	KindNone Kind = iota
	KindEmptyPayload
	KindOverloaded
	KindDecodeFailed
	KindEngineFailure
	KindEmptyResult
	KindWriteLost
)

// Error wraps a recognition failure with its Kind and a ready-to-send
// message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// ErrDecodeFailed reports that the adapter could not decode the supplied
// bytes as an image.
func ErrDecodeFailed(cause error) error {
	return newError(KindDecodeFailed, "decode failed", cause)
}

// ErrEngineFailure reports that the recognizer itself raised an error.
func ErrEngineFailure(cause error) error {
	return newError(KindEngineFailure, "ocr engine error: "+cause.Error(), cause)
}

// ErrEmptyResult indicates the recognizer ran successfully but produced no
// text. Per spec this is not strictly an error, but it is still reported
// with success=false.
var ErrEmptyResult = newError(KindEmptyResult, "ocr failed to extract text", nil)

// ErrEmptyPayload reports that the request carried zero-length image data.
// Raised by the session layer before a task ever reaches the pool.
var ErrEmptyPayload = newError(KindEmptyPayload, "empty image data", nil)

// ErrOverloaded reports that the memory governor rejected admission for
// this request's payload size.
var ErrOverloaded = newError(KindOverloaded, "server memory limit exceeded", nil)

// ErrWriteLost reports that a response could not be written back to the
// client because the stream's transport was already gone. Per spec this is
// logged only and never surfaced as an OCRResult.
var ErrWriteLost = newError(KindWriteLost, "response write lost", nil)

// AsKind extracts the Kind from err, defaulting to KindEngineFailure for
// unrecognized errors.
func AsKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindEngineFailure
}
