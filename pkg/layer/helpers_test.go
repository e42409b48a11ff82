package layer

import (
	"encoding/binary"
	"math"
)

// Helper functions for creating test records

func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putI32(b []byte, off int, v int32)  { putU32(b, off, uint32(v)) }
func putF32(b []byte, off int, v float32) {
	putU32(b, off, math.Float32bits(v))
}

func putVec3(b []byte, off int, v Vec3) {
	putF32(b, off, v.X)
	putF32(b, off+4, v.Y)
	putF32(b, off+8, v.Z)
}

// newRecord returns a zeroed record of the full size of kind with the
// header filled in. Kinds without a decoder get a bare header.
func newRecord(kind Kind, id uint32) []byte {
	size, ok := RecordSize(kind)
	if !ok {
		size = HeaderSize
	}
	rec := make([]byte, size)
	putI32(rec, 0, int32(kind))
	putU32(rec, 4, id)
	putVec3(rec, 12, Vec3{X: 10, Y: 20, Z: 30})
	putVec3(rec, 24, Vec3{X: 0, Y: 1.5, Z: 0})
	putVec3(rec, 36, Vec3{X: 1, Y: 1, Z: 1})
	return rec
}

// appendText appends s with its terminator to rec and stores the
// record-relative reference to it at field.
func appendText(rec []byte, field int, s string) []byte {
	ref := len(rec)
	rec = append(rec, s...)
	rec = append(rec, 0)
	putI32(rec, field, int32(ref))
	return rec
}

// appendVec3s appends a position list to rec and stores its reference at
// refField and its length at countField.
func appendVec3s(rec []byte, refField, countField int, vs []Vec3) []byte {
	ref := len(rec)
	for _, v := range vs {
		var elem [vec3Size]byte
		putVec3(elem[:], 0, v)
		rec = append(rec, elem[:]...)
	}
	putI32(rec, refField, int32(ref))
	putI32(rec, countField, int32(len(vs)))
	return rec
}

// concat lays records out back to back and returns their offsets.
func concat(recs ...[]byte) ([]byte, []RecordOffset) {
	var data []byte
	offsets := make([]RecordOffset, 0, len(recs))
	for _, rec := range recs {
		offsets = append(offsets, RecordOffset(len(data)))
		data = append(data, rec...)
	}
	return data, offsets
}

// withOffsetTable appends an offset table for offsets to data. Entries are
// stored relative to the table start.
func withOffsetTable(data []byte, offsets []RecordOffset) ([]byte, OffsetTable) {
	start := len(data)
	out := append([]byte(nil), data...)
	for _, off := range offsets {
		var entry [4]byte
		putI32(entry[:], 0, int32(off)-int32(start))
		out = append(out, entry[:]...)
	}
	return out, OffsetTable{Start: RecordOffset(start), Count: int32(len(offsets))}
}
