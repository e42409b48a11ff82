package layer

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Skipped is a record that could not be decoded.
type Skipped struct {
	Offset RecordOffset
	Err    error
}

// Result holds the outcome of parsing one layer. Records and Skipped are in
// offset-list order.
type Result struct {
	Records []Record
	Skipped []Skipped
}

// Err combines the reasons of all skipped records, nil if none were skipped.
func (r *Result) Err() error {
	var err error
	for _, s := range r.Skipped {
		err = multierr.Append(err, fmt.Errorf("record at %d: %w", s.Offset, s.Err))
	}
	return err
}

// OffsetTable locates a list of Count int32 record offsets stored at Start.
// Each entry is relative to Start.
type OffsetTable struct {
	Start RecordOffset
	Count int32
}

// Parser decodes the records of a layer buffer. The zero value is not
// usable; create one with NewParser.
type Parser struct {
	log *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger logs every skipped record at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes the record at each offset. A record that fails to decode is
// added to Result.Skipped and parsing continues with the next offset.
func (p *Parser) Parse(data []byte, offsets []RecordOffset) *Result {
	src := NewSource(data)
	res := &Result{
		Records: make([]Record, 0, len(offsets)),
	}

	for _, off := range offsets {
		rec, err := DecodeRecord(src, off)
		if err != nil {
			p.log.Debug("skipping record",
				zap.Uint32("offset", uint32(off)),
				zap.Error(err))
			res.Skipped = append(res.Skipped, Skipped{Offset: off, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res
}

// ParseTable reads the offset table and then decodes every record it
// lists. Only an unreadable table is returned as an error.
func (p *Parser) ParseTable(data []byte, table OffsetTable) (*Result, error) {
	offsets, err := ReadOffsets(NewSource(data), table)
	if err != nil {
		return nil, err
	}
	return p.Parse(data, offsets), nil
}

// ReadOffsets resolves an offset table into absolute record offsets.
// Entries that point outside the buffer are returned as-is; the records
// they locate fail to decode later.
func ReadOffsets(src *Source, table OffsetTable) ([]RecordOffset, error) {
	if table.Count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrOffsetTable, table.Count)
	}
	start := int64(table.Start)
	if !src.Fits(start, int64(table.Count)*4) {
		return nil, fmt.Errorf("%w: %d entries at %d exceed buffer of %d bytes", ErrOffsetTable, table.Count, table.Start, src.Len())
	}

	offsets := make([]RecordOffset, 0, table.Count)
	for i := int32(0); i < table.Count; i++ {
		rel, err := src.I32(start + int64(i)*4)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrOffsetTable, i, err)
		}
		abs := start + int64(rel)
		if abs < 0 || abs > math.MaxUint32 {
			// Not representable as a RecordOffset; clamp to an offset the
			// decoder will reject instead of wrapping onto another record.
			abs = math.MaxUint32
		}
		offsets = append(offsets, RecordOffset(abs))
	}
	return offsets, nil
}

// Parse decodes records with a default Parser.
func Parse(data []byte, offsets []RecordOffset) *Result {
	return NewParser().Parse(data, offsets)
}

// ParseTable decodes the records listed by table with a default Parser.
func ParseTable(data []byte, table OffsetTable) (*Result, error) {
	return NewParser().ParseTable(data, table)
}
