// Package lgb reads zone layer group files: a small envelope of named
// layers, each carrying an offset table of records decoded by package layer.
package lgb

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/zonelayer/pkg/layer"
)

const (
	fileMagic  = "LGB1"
	chunkMagic = "LGP1"

	fileHeaderSize  = 12
	chunkHeaderSize = 24
	layerHeaderSize = 32
)

var (
	ErrInvalidMagic = errors.New("invalid LGB magic")
	ErrTruncated    = errors.New("truncated LGB data")
)

// FileHeader is the fixed header at the start of a file.
type FileHeader struct {
	Magic      [4]byte
	FileSize   uint32
	ChunkCount uint32
}

// ChunkHeader follows the file header. Refs are relative to the chunk start.
type ChunkHeader struct {
	Magic      [4]byte
	ChunkSize  uint32
	GroupID    int32
	NameRef    int32
	LayersRef  int32
	LayerCount int32
}

// LayerHeader starts every layer. Refs are relative to the layer start.
type LayerHeader struct {
	LayerID          uint32
	NameRef          int32
	ObjectsRef       int32
	ObjectCount      int32
	ToolModeVisible  uint8
	ToolModeReadOnly uint8
	IsBushLayer      uint8
	PS3Visible       uint8
	LayerSetRefs     int32
	FestivalID       uint16
	FestivalPhaseID  uint16
	IsTemporary      uint8
	IsHousing        uint8
	VersionMask      uint16
}

// Layer is one decoded layer.
type Layer struct {
	ID     uint32
	Name   string
	Offset layer.RecordOffset

	ToolModeVisible  bool
	ToolModeReadOnly bool
	BushLayer        bool
	PS3Visible       bool
	Temporary        bool
	Housing          bool
	FestivalID       uint16
	FestivalPhaseID  uint16
	VersionMask      uint16

	*layer.Result
}

// File is a decoded layer group file.
type File struct {
	Path    string
	Header  FileHeader
	Chunk   ChunkHeader
	GroupID int32
	Name    string
	Layers  []*Layer
}

// RecordCount returns the number of decoded records over all layers.
func (f *File) RecordCount() int {
	n := 0
	for _, l := range f.Layers {
		n += len(l.Records)
	}
	return n
}

// SkippedCount returns the number of skipped records over all layers.
func (f *File) SkippedCount() int {
	n := 0
	for _, l := range f.Layers {
		n += len(l.Skipped)
	}
	return n
}

// CountByKind counts records by kind over all layers.
func (f *File) CountByKind() map[layer.Kind]int {
	counts := make(map[layer.Kind]int)
	for _, l := range f.Layers {
		for kind, n := range l.CountByKind() {
			counts[kind] += n
		}
	}
	return counts
}

// Layer returns the layer with the given name.
func (f *File) Layer(name string) (*Layer, bool) {
	for _, l := range f.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger logs layer progress at debug level and is passed on to the
// record parser.
func WithLogger(log *zap.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// WithWorkers limits how many layers or files are decoded at once.
func WithWorkers(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.workers = n
		}
	}
}

// Reader decodes layer group files.
type Reader struct {
	log     *zap.Logger
	workers int
	parser  *layer.Parser
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		log:     zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.parser = layer.NewParser(layer.WithLogger(r.log))
	return r
}

// Parse decodes a whole file held in data. Layers are decoded concurrently
// and returned in table order.
func (r *Reader) Parse(data []byte) (*File, error) {
	f := &File{}
	if err := readStruct(data, 0, fileHeaderSize, &f.Header); err != nil {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	if string(f.Header.Magic[:]) != fileMagic {
		return nil, fmt.Errorf("%w: file magic %q", ErrInvalidMagic, f.Header.Magic[:])
	}

	if err := readStruct(data, fileHeaderSize, chunkHeaderSize, &f.Chunk); err != nil {
		return nil, fmt.Errorf("reading chunk header: %w", err)
	}
	if string(f.Chunk.Magic[:]) != chunkMagic {
		return nil, fmt.Errorf("%w: chunk magic %q", ErrInvalidMagic, f.Chunk.Magic[:])
	}
	f.GroupID = f.Chunk.GroupID

	src := layer.NewSource(data)
	name, err := layer.ResolveText(src, fileHeaderSize, f.Chunk.NameRef)
	if err != nil {
		return nil, fmt.Errorf("reading group name: %w", err)
	}
	f.Name = name

	start, err := tableStart(data, fileHeaderSize, f.Chunk.LayersRef)
	if err != nil {
		return nil, fmt.Errorf("locating layer table: %w", err)
	}
	offsets, err := layer.ReadOffsets(src, layer.OffsetTable{Start: start, Count: f.Chunk.LayerCount})
	if err != nil {
		return nil, fmt.Errorf("reading layer table: %w", err)
	}

	f.Layers = make([]*Layer, len(offsets))
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, off := range offsets {
		g.Go(func() error {
			l, err := r.parseLayer(data, src, off)
			if err != nil {
				return fmt.Errorf("layer %d at %d: %w", i, off, err)
			}
			f.Layers[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return f, nil
}

func (r *Reader) parseLayer(data []byte, src *layer.Source, off layer.RecordOffset) (*Layer, error) {
	var hdr LayerHeader
	if err := readStruct(data, int64(off), layerHeaderSize, &hdr); err != nil {
		return nil, fmt.Errorf("reading layer header: %w", err)
	}

	name, err := layer.ResolveText(src, off, hdr.NameRef)
	if err != nil {
		return nil, fmt.Errorf("reading layer name: %w", err)
	}

	start, err := tableStart(data, int64(off), hdr.ObjectsRef)
	if err != nil {
		return nil, fmt.Errorf("locating object table of %q: %w", name, err)
	}
	res, err := r.parser.ParseTable(data, layer.OffsetTable{Start: start, Count: hdr.ObjectCount})
	if err != nil {
		return nil, fmt.Errorf("reading object table of %q: %w", name, err)
	}

	r.log.Debug("layer decoded",
		zap.Uint32("id", hdr.LayerID),
		zap.String("name", name),
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)))

	return &Layer{
		ID:               hdr.LayerID,
		Name:             name,
		Offset:           off,
		ToolModeVisible:  hdr.ToolModeVisible != 0,
		ToolModeReadOnly: hdr.ToolModeReadOnly != 0,
		BushLayer:        hdr.IsBushLayer != 0,
		PS3Visible:       hdr.PS3Visible != 0,
		Temporary:        hdr.IsTemporary != 0,
		Housing:          hdr.IsHousing != 0,
		FestivalID:       hdr.FestivalID,
		FestivalPhaseID:  hdr.FestivalPhaseID,
		VersionMask:      hdr.VersionMask,
		Result:           res,
	}, nil
}

// Open reads and decodes the file at path.
func (r *Reader) Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := r.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// ParseFiles opens every path concurrently. Files are returned in path
// order; the first failure cancels the remaining work.
func (r *Reader) ParseFiles(ctx context.Context, paths []string) ([]*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := r.Open(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Parse decodes data with a default Reader.
func Parse(data []byte) (*File, error) {
	return NewReader().Parse(data)
}

// Open decodes the file at path with a default Reader.
func Open(path string) (*File, error) {
	return NewReader().Open(path)
}

// ParseFiles decodes paths with a default Reader.
func ParseFiles(ctx context.Context, paths []string) ([]*File, error) {
	return NewReader().ParseFiles(ctx, paths)
}

func readStruct(data []byte, off, size int64, v any) error {
	if off < 0 || off+size > int64(len(data)) {
		return fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncated, size, off, len(data))
	}
	return binary.Read(bytes.NewReader(data[off:off+size]), binary.LittleEndian, v)
}

func tableStart(data []byte, base int64, ref int32) (layer.RecordOffset, error) {
	abs := base + int64(ref)
	if abs < 0 || abs > int64(len(data)) {
		return 0, fmt.Errorf("%w: table ref %d from %d lands at %d", ErrTruncated, ref, base, abs)
	}
	return layer.RecordOffset(abs), nil
}
