package patch

import (
	"errors"
	"fmt"

	"class-migrator/internal/classfile"
)

var (
	// ErrCapacityExceeded is matched by every *CapacityError.
	ErrCapacityExceeded = classfile.ErrCapacityExceeded
	// ErrUnordered reports descriptors or edits out of ascending order.
	ErrUnordered = errors.New("patch descriptors out of order")
	// ErrMismatch reports a descriptor that does not fit the bytes it is
	// applied to.
	ErrMismatch = errors.New("patch does not match input")
)

// CapacityError reports a structure that would outgrow its limit.
type CapacityError struct {
	// What names the structure: "class file", "UTF-8 constant 12", ...
	What  string
	Size  int64
	Limit int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %s size %d over limit %d", ErrCapacityExceeded, e.What, e.Size, e.Limit)
}

// Unwrap returns ErrCapacityExceeded.
func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
