// Package errors provides the coded error type shared by the pipeline,
// the journal and the HTTP layer. Import it as perr.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// Kind is the machine-distinguishable failure category.
type Kind uint8

const (
	// KindUnknown is for unclassified errors.
	KindUnknown Kind = iota

	// KindInvalidArgument is for missing or malformed request input.
	KindInvalidArgument

	// KindInputDecode is for image bytes that cannot be decoded.
	KindInputDecode

	// KindInference is for detector or classifier invocation failures.
	KindInference

	// KindStoreRead is for an unreadable or corrupt journal store.
	KindStoreRead

	// KindStoreWrite is for a journal store that cannot be persisted.
	KindStoreWrite
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindInvalidArgument: "invalid_argument",
	KindInputDecode:     "input_decode",
	KindInference:       "inference",
	KindStoreRead:       "store_read",
	KindStoreWrite:      "store_write",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// HTTPStatusCode maps a kind onto an HTTP status.
func HTTPStatusCode(k Kind) int {
	switch k {
	case KindInvalidArgument, KindInputDecode:
		return http.StatusBadRequest
	case KindInference:
		return http.StatusBadGateway
	case KindStoreRead, KindStoreWrite, KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a human message, a kind and an optional wrapped cause.
type Error struct {
	orig error
	msg  string
	kind Kind
}

// Wire is the JSON form returned to callers.
type Wire struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.orig }

// Kind returns the failure category.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

// New returns an *Error with the given kind and message.
func New(kind Kind, msg string) error { return &Error{kind: kind, msg: msg} }

// Newf returns an *Error with kind and formatted message.
func Newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error wrapping orig.
func Wrap(orig error, kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg, orig: orig}
}

// Wrapf returns an *Error wrapping orig with a formatted message.
func Wrapf(orig error, kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...), orig: orig}
}

// As unwraps err into an *Error when it is one of ours.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf extracts the kind of err, defaulting to KindUnknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }

// IsProcessing reports whether err is an image processing failure
// (decode or inference), as opposed to a journal failure.
func IsProcessing(err error) bool {
	k := KindOf(err)
	return err != nil && (k == KindInputDecode || k == KindInference)
}

// HTTPStatus returns the mapped HTTP status for any error.
func HTTPStatus(err error) int { return HTTPStatusCode(KindOf(err)) }

// WireFrom converts any error into a Wire payload.
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.kind.String(), Error: e.Error()}
	}
	return Wire{Code: KindUnknown.String(), Error: err.Error()}
}
