package classfile

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFormat is matched by every *FormatError.
	ErrMalformedFormat = errors.New("malformed class file")
	// ErrCapacityExceeded reports that a structure would outgrow a limit of
	// the class-file format (pool slots, string length, code length, file
	// size).
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// FormatError reports a structural problem at a byte offset. For errors
// found inside method code the offset is relative to the code start.
type FormatError struct {
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrMalformedFormat, e.Offset, e.Msg)
}

// Unwrap returns ErrMalformedFormat.
func (e *FormatError) Unwrap() error {
	return ErrMalformedFormat
}

func errorf(offset int, format string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
