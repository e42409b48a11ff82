package layer

import (
	"bytes"
	"fmt"
)

func absolute(off RecordOffset, ref int32) int64 {
	return int64(off) + int64(ref)
}

// ResolveText returns the zero-terminated text that ref points at, with ref
// measured from the record at off. A zero ref means "no text" and yields
// "" without touching the buffer. The bytes are returned as-is; see
// package encoding for charset conversion.
func ResolveText(src *Source, off RecordOffset, ref int32) (string, error) {
	if ref == 0 {
		return "", nil
	}

	abs := absolute(off, ref)
	if abs < 0 || abs >= int64(src.Len()) {
		return "", fmt.Errorf("%w: text ref %d from record %d lands at %d (buffer is %d bytes)", ErrInvalidOffset, ref, off, abs, src.Len())
	}

	tail := src.data[abs:]
	end := bytes.IndexByte(tail, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: text at %d", ErrUnterminatedText, abs)
	}
	return string(tail[:end]), nil
}

// ResolveList reads count contiguous elements of elemSize bytes starting at
// ref, with ref measured from the record at off. A zero count always yields
// an empty list, whatever ref holds. read decodes one element at an
// absolute offset.
func ResolveList[T any](src *Source, off RecordOffset, ref, count int32, elemSize int, read func(src *Source, off int64) (T, error)) ([]T, error) {
	if count == 0 {
		return []T{}, nil
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", ErrOutOfBounds, count)
	}

	start := absolute(off, ref)
	if start < 0 || start >= int64(src.Len()) {
		return nil, fmt.Errorf("%w: list ref %d from record %d lands at %d (buffer is %d bytes)", ErrInvalidOffset, ref, off, start, src.Len())
	}

	size := int64(count) * int64(elemSize)
	if !src.Fits(start, size) {
		return nil, fmt.Errorf("%w: %d elements of %d bytes at %d (buffer is %d bytes)", ErrOutOfBounds, count, elemSize, start, src.Len())
	}

	out := make([]T, 0, count)
	for i := int64(0); i < int64(count); i++ {
		elem, err := read(src, start+i*int64(elemSize))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, elem)
	}
	return out, nil
}
