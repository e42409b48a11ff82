// Package layer decodes the binary instance-object records of a zone layer.
//
// A layer is a contiguous buffer holding variable-length records. Each
// record starts with a fixed 48-byte header whose first field selects the
// payload layout that follows. Names, asset paths and element arrays are
// not stored inline: they are int32 offsets measured from the start of the
// record that holds them.
package layer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vec3 is a 3-component float vector as stored on disk.
type Vec3 struct {
	X, Y, Z float32
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

const vec3Size = 12

// Source is a read-only, bounds-checked view over a record buffer.
// All reads are little-endian. A Source holds no state besides the
// buffer, so one Source may be shared by concurrent readers.
type Source struct {
	data []byte
}

// NewSource wraps data. The slice is not copied and must not be modified
// while the Source is in use.
func NewSource(data []byte) *Source {
	return &Source{data: data}
}

// Len returns the buffer length.
func (s *Source) Len() int {
	return len(s.data)
}

// Fits reports whether n bytes can be read at off.
func (s *Source) Fits(off, n int64) bool {
	return off >= 0 && n >= 0 && off <= int64(len(s.data))-n
}

func (s *Source) slice(off, n int64) ([]byte, error) {
	if !s.Fits(off, n) {
		return nil, fmt.Errorf("%w: %d bytes at %d (buffer is %d bytes)", ErrOutOfBounds, n, off, len(s.data))
	}
	return s.data[off : off+n], nil
}

// Bytes returns a copy of n bytes at off.
func (s *Source) Bytes(off, n int64) ([]byte, error) {
	b, err := s.slice(off, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// U8 reads a uint8 at off.
func (s *Source) U8(off int64) (uint8, error) {
	b, err := s.slice(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads an int8 at off.
func (s *Source) I8(off int64) (int8, error) {
	v, err := s.U8(off)
	return int8(v), err
}

// Bool reads a one-byte flag at off. Any non-zero value is true.
func (s *Source) Bool(off int64) (bool, error) {
	v, err := s.U8(off)
	return v != 0, err
}

// U16 reads a uint16 at off.
func (s *Source) U16(off int64) (uint16, error) {
	b, err := s.slice(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// I16 reads an int16 at off.
func (s *Source) I16(off int64) (int16, error) {
	v, err := s.U16(off)
	return int16(v), err
}

// U32 reads a uint32 at off.
func (s *Source) U32(off int64) (uint32, error) {
	b, err := s.slice(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32 reads an int32 at off.
func (s *Source) I32(off int64) (int32, error) {
	v, err := s.U32(off)
	return int32(v), err
}

// F32 reads a float32 at off.
func (s *Source) F32(off int64) (float32, error) {
	v, err := s.U32(off)
	return math.Float32frombits(v), err
}

// Vec3 reads three consecutive float32 values at off.
func (s *Source) Vec3(off int64) (Vec3, error) {
	b, err := s.slice(off, vec3Size)
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}, nil
}
