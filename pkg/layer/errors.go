package layer

import (
	"errors"
	"fmt"
)

// Decode errors.
var (
	ErrOutOfBounds      = errors.New("read out of bounds")
	ErrInvalidOffset    = errors.New("invalid relative offset")
	ErrUnterminatedText = errors.New("unterminated text")
	ErrUnknownKind      = errors.New("unknown record kind")
	ErrOffsetTable      = errors.New("unreadable offset table")
)

// UnknownKindError reports a discriminant with no registered decoder.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnknownKind, e.Kind)
}

// Unwrap lets errors.Is match ErrUnknownKind.
func (e *UnknownKindError) Unwrap() error {
	return ErrUnknownKind
}

// Reason returns the sentinel that classifies err, or nil if err is not a
// decode error.
func Reason(err error) error {
	for _, sentinel := range []error{
		ErrUnknownKind,
		ErrUnterminatedText,
		ErrInvalidOffset,
		ErrOutOfBounds,
		ErrOffsetTable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}
