// Package tdms reads the object hierarchy of TDMS files.
//
// A TDMS file is a sequence of segments. Each segment starts with a 28-byte
// lead-in, optionally followed by metadata (object paths, raw data indexes
// and properties) and raw data. The reader walks every segment, merges
// properties across segments and derives each channel's sample count from
// the raw data indexes without reading the samples themselves.
package tdms

import (
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/binary"
	"github.com/simonhull/labmeta/internal/types"
)

// Channel property names carrying waveform timing.
const (
	PropIncrement = "wf_increment"
	PropStartTime = "wf_start_time"
)

// File is a parsed TDMS file.
type File struct {
	path       string
	properties *types.Metadata
	groups     []*Group
	segments   []Segment
	closer     io.Closer
}

// Group is a named set of channels.
type Group struct {
	name       string
	properties *types.Metadata
	channels   []*Channel
}

// Channel is a single series within a group.
type Channel struct {
	name       string
	group      string
	properties *types.Metadata
	dataType   DataType
	samples    uint64
}

// Open reads the TDMS file at path. The returned File keeps the file open
// until Close is called.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat file")
	}

	file, err := Read(f, stat.Size(), path)
	if err != nil {
		f.Close()
		return nil, err
	}
	file.closer = f
	return file, nil
}

// OpenContainer is Open typed as a types.WaveformOpener.
func OpenContainer(path string) (types.WaveformContainer, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Read parses a TDMS file from r.
func Read(r io.ReaderAt, size int64, path string) (*File, error) {
	sr := binary.NewSafeReader(r, size, path)
	file := &File{path: path, properties: types.NewMetadata()}

	s := &scanner{
		sr:      sr,
		file:    file,
		objects: make(map[string]*object),
	}

	if size == 0 {
		return nil, &types.UnsupportedFormatError{Path: path, Reason: "empty file"}
	}

	for offset := int64(0); offset < size; {
		next, err := s.segment(offset)
		if err != nil {
			return nil, err
		}
		if next <= offset {
			return nil, s.corrupt(offset, "segment does not advance")
		}
		offset = next
	}

	return file, nil
}

// Path returns the path the file was read from.
func (f *File) Path() string { return f.path }

// Properties returns the file-level properties.
func (f *File) Properties() *types.Metadata { return f.properties }

// Groups returns the groups in order of first appearance.
func (f *File) Groups() []types.WaveformGroup {
	out := make([]types.WaveformGroup, len(f.groups))
	for i, g := range f.groups {
		out[i] = g
	}
	return out
}

// GroupList returns the concrete groups in order of first appearance.
func (f *File) GroupList() []*Group { return f.groups }

// Segments returns the parsed segments in file order.
func (f *File) Segments() []Segment { return f.segments }

// Close releases the underlying file, if any.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

func (f *File) group(name string) *Group {
	for _, g := range f.groups {
		if g.name == name {
			return g
		}
	}
	g := &Group{name: name, properties: types.NewMetadata()}
	f.groups = append(f.groups, g)
	return g
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Properties returns the group properties.
func (g *Group) Properties() *types.Metadata { return g.properties }

// Channels returns the channels in order of first appearance.
func (g *Group) Channels() []types.WaveformChannel {
	out := make([]types.WaveformChannel, len(g.channels))
	for i, c := range g.channels {
		out[i] = c
	}
	return out
}

// ChannelList returns the concrete channels in order of first appearance.
func (g *Group) ChannelList() []*Channel { return g.channels }

func (g *Group) channel(name string) *Channel {
	for _, c := range g.channels {
		if c.name == name {
			return c
		}
	}
	c := &Channel{name: name, group: g.name, properties: types.NewMetadata()}
	g.channels = append(g.channels, c)
	return c
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Group returns the name of the owning group.
func (c *Channel) Group() string { return c.group }

// Properties returns the channel properties merged across segments.
func (c *Channel) Properties() *types.Metadata { return c.properties }

// DataType returns the sample type from the most recent raw data index.
func (c *Channel) DataType() DataType { return c.dataType }

// SampleCount returns the number of samples stored across all segments.
func (c *Channel) SampleCount() uint64 { return c.samples }

// TimeIncrement returns the wf_increment property as seconds.
func (c *Channel) TimeIncrement() (float64, bool) {
	v, ok := c.properties.Get(PropIncrement)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// StartTime returns the wf_start_time property.
func (c *Channel) StartTime() (time.Time, bool) {
	v, ok := c.properties.Get(PropStartTime)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}
