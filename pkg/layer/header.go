package layer

import "fmt"

// RecordOffset is an absolute byte offset of a record in the buffer.
type RecordOffset uint32

// HeaderSize is the size of the header shared by every record.
const HeaderSize = 48

// Transform places an object in the zone.
type Transform struct {
	Translation Vec3
	Rotation    Vec3
	Scale       Vec3
}

// Header is the common record prefix.
type Header struct {
	Kind       Kind
	InstanceID uint32
	NameRef    int32 // relative to the record start
	Transform  Transform
}

// ReadHeader decodes the header of the record at off.
func ReadHeader(src *Source, off RecordOffset) (Header, error) {
	base := int64(off)
	if !src.Fits(base, HeaderSize) {
		return Header{}, fmt.Errorf("%w: header at %d needs %d bytes, buffer is %d", ErrOutOfBounds, off, HeaderSize, src.Len())
	}

	var h Header
	kind, err := src.I32(base)
	if err != nil {
		return Header{}, fmt.Errorf("reading kind: %w", err)
	}
	h.Kind = Kind(kind)
	if h.InstanceID, err = src.U32(base + 4); err != nil {
		return Header{}, fmt.Errorf("reading instance id: %w", err)
	}
	if h.NameRef, err = src.I32(base + 8); err != nil {
		return Header{}, fmt.Errorf("reading name ref: %w", err)
	}
	if h.Transform.Translation, err = src.Vec3(base + 12); err != nil {
		return Header{}, fmt.Errorf("reading translation: %w", err)
	}
	if h.Transform.Rotation, err = src.Vec3(base + 24); err != nil {
		return Header{}, fmt.Errorf("reading rotation: %w", err)
	}
	if h.Transform.Scale, err = src.Vec3(base + 36); err != nil {
		return Header{}, fmt.Errorf("reading scale: %w", err)
	}

	return h, nil
}
