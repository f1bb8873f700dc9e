package index

import "errors"

var (
	// ErrConfiguration is returned when a required credential or setting
	// is missing before any remote call is attempted.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation is returned when an input fails a local precondition,
	// such as a vector dimension mismatch or a missing required field.
	ErrValidation = errors.New("validation error")

	// ErrTransport is returned on network or HTTP-level failures talking
	// to a remote service.
	ErrTransport = errors.New("transport error")

	// ErrNotFound is returned when a lookup by id yields no hit.
	ErrNotFound = errors.New("not found")

	// ErrUnexpected is returned for any other failure, including
	// malformed upstream responses.
	ErrUnexpected = errors.New("unexpected error")
)
