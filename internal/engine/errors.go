package engine

import "errors"

var (
	// ErrDataUnavailable means the source file is missing or could not be parsed.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidColumn means an operation referenced an unknown column or one of the wrong kind.
	ErrInvalidColumn = errors.New("invalid column")
	// ErrInvalidArgument covers bad non-column parameters (n, bins, op).
	ErrInvalidArgument = errors.New("invalid argument")
)
