package tdms

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/binary"
	"github.com/simonhull/labmeta/internal/types"
)

// LeadInSize is the fixed size of a segment lead-in.
const LeadInSize = 28

// Table of contents flags.
const (
	TocMetaData      = 1 << 1
	TocNewObjList    = 1 << 2
	TocRawData       = 1 << 3
	TocInterleaved   = 1 << 5
	TocBigEndian     = 1 << 6
	TocDAQmxRawData  = 1 << 7
	incompleteOffset = 0xFFFFFFFFFFFFFFFF
)

// Supported format versions.
const (
	Version1 = 4712
	Version2 = 4713
)

// Raw data index markers.
const (
	rawIndexSame         = 0x00000000
	rawIndexNone         = 0xFFFFFFFF
	rawIndexDAQmxFormat  = 0x00001269
	rawIndexDAQmxDigital = 0x0000126A
	minObjectEntrySize   = 12 // path length, index length, property count
	minPropertyEntrySize = 9  // name length, type, smallest value
)

// RawIndex describes the samples an object contributes to each chunk.
type RawIndex struct {
	DataType  DataType
	Dimension uint32
	Values    uint64
	TotalSize uint64 // strings only
}

// ChunkSize returns the bytes the object occupies in one chunk.
func (ix RawIndex) ChunkSize() uint64 {
	if ix.DataType == TypeString {
		return ix.TotalSize
	}
	return ix.Values * uint64(ix.DataType.Size())
}

// SegmentObject is an object listed in a segment's data layout.
type SegmentObject struct {
	Path    string
	HasData bool
	Index   RawIndex
}

// Segment is a parsed segment lead-in plus its data layout.
type Segment struct {
	Offset            int64
	ToC               uint32
	Version           uint32
	NextSegmentOffset uint64
	RawDataOffset     uint64

	// Objects lists every object active in the segment, in data order.
	Objects []SegmentObject
	// DataSize is the number of raw data bytes in the segment.
	DataSize int64
	// Chunks is the number of complete chunks in the raw data.
	Chunks uint64
	// Incomplete is set when the segment was not finalized by the writer
	// and its data runs to the end of the file.
	Incomplete bool
}

// BigEndian reports whether the segment's metadata and data are big-endian.
func (s Segment) BigEndian() bool { return s.ToC&TocBigEndian != 0 }

// Interleaved reports whether channel samples are interleaved.
func (s Segment) Interleaved() bool { return s.ToC&TocInterleaved != 0 }

// HasMetaData reports whether the segment carries metadata.
func (s Segment) HasMetaData() bool { return s.ToC&TocMetaData != 0 }

// HasRawData reports whether the segment carries raw data.
func (s Segment) HasRawData() bool { return s.ToC&TocRawData != 0 }

// NewObjectList reports whether the segment resets the object list.
func (s Segment) NewObjectList() bool { return s.ToC&TocNewObjList != 0 }

// object tracks one path across segments.
type object struct {
	path       string
	properties *types.Metadata
	channel    *Channel // nil for the root and group objects

	index    RawIndex
	hasIndex bool // index was set by some segment
	hasData  bool // object carries data in the current layout
}

// scanner walks a file segment by segment.
type scanner struct {
	sr      *binary.SafeReader
	file    *File
	objects map[string]*object
	active  []*object
}

func (s *scanner) corrupt(offset int64, reason string) error {
	return &types.CorruptedFileError{Path: s.sr.Path(), Offset: offset, Reason: reason}
}

// segment parses the segment at offset and returns the offset of the next.
func (s *scanner) segment(offset int64) (int64, error) {
	size := s.sr.Size()
	if size-offset < LeadInSize {
		return 0, s.corrupt(offset, "truncated segment lead-in")
	}

	// Tag (4 bytes)
	tag := make([]byte, 4)
	if err := s.sr.ReadAt(tag, offset, "segment tag"); err != nil {
		return 0, err
	}
	if string(tag) != "TDSm" {
		if offset == 0 {
			return 0, &types.UnsupportedFormatError{Path: s.sr.Path(), Reason: "missing TDSm lead-in"}
		}
		return 0, s.corrupt(offset, fmt.Sprintf("expected segment tag TDSm, found %q", tag))
	}

	// The table of contents is always little-endian.
	toc, err := binary.ReadLE[uint32](s.sr, offset+4, "table of contents")
	if err != nil {
		return 0, err
	}
	seg := Segment{Offset: offset, ToC: toc}

	r := binary.NewReader(s.sr, offset+8)
	if seg.BigEndian() {
		r.SetOrder(binary.BigEndian)
	} else {
		r.SetOrder(binary.LittleEndian)
	}

	cr := binary.NewChainReader(r)
	seg.Version = binary.ReadChained[uint32](cr, "version")
	seg.NextSegmentOffset = binary.ReadChained[uint64](cr, "next segment offset")
	seg.RawDataOffset = binary.ReadChained[uint64](cr, "raw data offset")
	if err := cr.Error(); err != nil {
		return 0, err
	}

	if seg.Version != Version1 && seg.Version != Version2 {
		return 0, &types.UnsupportedFormatError{
			Path:   s.sr.Path(),
			Reason: fmt.Sprintf("TDMS version %d", seg.Version),
		}
	}
	if toc&TocDAQmxRawData != 0 {
		return 0, &types.UnsupportedFormatError{Path: s.sr.Path(), Reason: "DAQmx raw data segments"}
	}

	body := offset + LeadInSize
	end := size
	if seg.NextSegmentOffset == incompleteOffset || seg.NextSegmentOffset > uint64(size-body) {
		seg.Incomplete = true
	} else {
		end = body + int64(seg.NextSegmentOffset)
	}
	if seg.RawDataOffset > uint64(end-body) {
		return 0, s.corrupt(offset, fmt.Sprintf("raw data offset %d beyond segment end", seg.RawDataOffset))
	}
	dataStart := body + int64(seg.RawDataOffset)

	if seg.NewObjectList() {
		s.active = nil
	}
	if seg.HasMetaData() {
		r.Seek(body)
		if err := s.metadata(r, dataStart); err != nil {
			return 0, err
		}
	}

	if seg.HasRawData() {
		seg.DataSize = end - dataStart
		seg.Chunks = s.countSamples(uint64(seg.DataSize), seg.Interleaved())
	}

	for _, obj := range s.active {
		seg.Objects = append(seg.Objects, SegmentObject{Path: obj.path, HasData: obj.hasData, Index: obj.index})
	}
	s.file.segments = append(s.file.segments, seg)

	return end, nil
}

// metadata reads the object list of a segment. limit is the start of the
// raw data.
func (s *scanner) metadata(r *binary.Reader, limit int64) error {
	start := r.Offset()
	count, err := binary.ReadValue[uint32](r, "object count")
	if err != nil {
		return s.corrupt(start, "truncated object count")
	}
	if uint64(count)*minObjectEntrySize > uint64(max(limit-r.Offset(), 0)) {
		return s.corrupt(start, fmt.Sprintf("object count %d exceeds metadata size", count))
	}

	for range count {
		objOffset := r.Offset()
		if err := s.objectEntry(r, limit); err != nil {
			var unsupported *types.UnsupportedFormatError
			var corrupt *types.CorruptedFileError
			if errors.As(err, &unsupported) || errors.As(err, &corrupt) {
				return err
			}
			return s.corrupt(objOffset, err.Error())
		}
	}

	if r.Offset() > limit {
		return s.corrupt(start, "metadata overruns raw data offset")
	}
	return nil
}

func (s *scanner) objectEntry(r *binary.Reader, limit int64) error {
	path, err := readString(r, "object path")
	if err != nil {
		return err
	}
	obj, err := s.object(path)
	if err != nil {
		return err
	}

	indexOffset := r.Offset()
	indexLen, err := binary.ReadValue[uint32](r, "raw data index length")
	if err != nil {
		return err
	}

	switch indexLen {
	case rawIndexNone:
		obj.hasData = false
	case rawIndexSame:
		if !obj.hasIndex {
			return s.corrupt(indexOffset, fmt.Sprintf("object %s reuses a raw data index it never had", path))
		}
		obj.hasData = true
	case rawIndexDAQmxFormat, rawIndexDAQmxDigital:
		return &types.UnsupportedFormatError{Path: s.sr.Path(), Reason: "DAQmx raw data index"}
	default:
		ix, err := readIndex(r)
		if err != nil {
			return err
		}
		if ix.Dimension != 1 {
			return s.corrupt(indexOffset, fmt.Sprintf("object %s has array dimension %d", path, ix.Dimension))
		}
		if ix.DataType == TypeDAQmxRawData {
			return &types.UnsupportedFormatError{Path: s.sr.Path(), Reason: "DAQmx raw data index"}
		}
		if ix.DataType != TypeString && ix.DataType.Size() == 0 {
			return s.corrupt(indexOffset, fmt.Sprintf("object %s has data of unsized type %s", path, ix.DataType))
		}
		obj.index = ix
		obj.hasIndex = true
		obj.hasData = true
		if obj.channel != nil {
			obj.channel.dataType = ix.DataType
		}
	}

	// Properties
	propOffset := r.Offset()
	nprops, err := binary.ReadValue[uint32](r, "property count")
	if err != nil {
		return err
	}
	if uint64(nprops)*minPropertyEntrySize > uint64(max(limit-r.Offset(), 0)) {
		return s.corrupt(propOffset, fmt.Sprintf("property count %d exceeds metadata size", nprops))
	}
	for range nprops {
		name, err := readString(r, "property name")
		if err != nil {
			return err
		}
		typ, err := binary.ReadValue[uint32](r, "property type")
		if err != nil {
			return err
		}
		val, err := readValue(r, DataType(typ))
		if err != nil {
			return errors.Wrapf(err, "property %q of %s", name, path)
		}
		obj.properties.Set(name, val)
	}

	s.activate(obj)
	return nil
}

func readIndex(r *binary.Reader) (RawIndex, error) {
	cr := binary.NewChainReader(r)
	ix := RawIndex{
		DataType:  DataType(binary.ReadChained[uint32](cr, "raw data type")),
		Dimension: binary.ReadChained[uint32](cr, "array dimension"),
		Values:    binary.ReadChained[uint64](cr, "number of values"),
	}
	if ix.DataType == TypeString {
		ix.TotalSize = binary.ReadChained[uint64](cr, "total string size")
	}
	return ix, cr.Error()
}

// object returns the tracked object for path, creating the group and
// channel entries on first sight.
func (s *scanner) object(path string) (*object, error) {
	if obj, ok := s.objects[path]; ok {
		return obj, nil
	}

	names, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	obj := &object{path: path}
	switch len(names) {
	case 0:
		obj.properties = s.file.properties
	case 1:
		obj.properties = s.file.group(names[0]).properties
	case 2:
		ch := s.file.group(names[0]).channel(names[1])
		obj.properties = ch.properties
		obj.channel = ch
	}
	s.objects[path] = obj
	return obj, nil
}

func (s *scanner) activate(obj *object) {
	for _, a := range s.active {
		if a == obj {
			return
		}
	}
	s.active = append(s.active, obj)
}

// countSamples adds the samples held in size bytes of raw data to each
// active channel and returns the number of complete chunks.
func (s *scanner) countSamples(size uint64, interleaved bool) uint64 {
	var chunkSize, rowSize uint64
	for _, obj := range s.active {
		if obj.hasData {
			chunkSize += obj.index.ChunkSize()
			rowSize += uint64(obj.index.DataType.Size())
		}
	}
	if chunkSize == 0 {
		return 0
	}

	chunks := size / chunkSize
	rem := size % chunkSize

	for _, obj := range s.active {
		if obj.hasData && obj.channel != nil {
			obj.channel.samples += chunks * obj.index.Values
		}
	}
	if rem == 0 {
		return chunks
	}

	// A trailing partial chunk is written by interrupted acquisitions.
	if interleaved {
		if rowSize == 0 {
			return chunks
		}
		rows := rem / rowSize
		for _, obj := range s.active {
			if obj.hasData && obj.channel != nil {
				obj.channel.samples += min(rows, obj.index.Values)
			}
		}
		return chunks
	}

	for _, obj := range s.active {
		if !obj.hasData {
			continue
		}
		need := obj.index.ChunkSize()
		if rem >= need {
			if obj.channel != nil {
				obj.channel.samples += obj.index.Values
			}
			rem -= need
			continue
		}
		if width := uint64(obj.index.DataType.Size()); width > 0 && obj.channel != nil {
			obj.channel.samples += rem / width
		}
		break
	}
	return chunks
}
