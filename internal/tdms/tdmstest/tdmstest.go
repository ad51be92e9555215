// Package tdmstest builds TDMS files for tests.
package tdmstest

import (
	"bytes"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/simonhull/labmeta/internal/binary"
)

// Data type codes used by the builder.
const (
	TypeI32       uint32 = 0x03
	TypeI64       uint32 = 0x04
	TypeU8        uint32 = 0x05
	TypeU16       uint32 = 0x06
	TypeU32       uint32 = 0x07
	TypeU64       uint32 = 0x08
	TypeSingle    uint32 = 0x09
	TypeDouble    uint32 = 0x0A
	TypeString    uint32 = 0x20
	TypeBool      uint32 = 0x21
	TypeTimestamp uint32 = 0x44
)

// Raw data index variants.
const (
	// IndexNone marks an object without data in the segment.
	IndexNone = iota
	// IndexNew writes the index fields of the Object.
	IndexNew
	// IndexSame reuses the index of the previous segment.
	IndexSame
)

// Object is one entry of a segment's object list.
type Object struct {
	Path      string
	IndexKind int
	DataType  uint32
	Values    uint64
	TotalSize uint64 // strings only
	Props     []Prop
}

// Prop is a property. Supported value types are int32, int64, uint32,
// uint64, float32, float64, string, bool and time.Time.
type Prop struct {
	Name  string
	Value any
}

// Segment describes one segment. Data is written verbatim as raw data.
type Segment struct {
	Objects       []Object
	NoMetaData    bool
	NewObjectList bool
	Interleaved   bool
	Incomplete    bool
	Version       uint32 // 0 selects 4713
	Data          []byte
}

// Builder accumulates segments.
type Builder struct {
	order binary.Endianness
	buf   bytes.Buffer
	err   error
}

// New returns a little-endian builder.
func New() *Builder {
	return &Builder{order: binary.LittleEndian}
}

// BigEndian switches subsequent segments to big-endian.
func (b *Builder) BigEndian() *Builder {
	b.order = binary.BigEndian
	return b
}

// ChannelPath returns the object path of a channel, quoting names.
func ChannelPath(group, channel string) string {
	return GroupPath(group) + "/'" + strings.ReplaceAll(channel, "'", "''") + "'"
}

// GroupPath returns the object path of a group.
func GroupPath(group string) string {
	return "/'" + strings.ReplaceAll(group, "'", "''") + "'"
}

// Segment appends a segment.
func (b *Builder) Segment(s Segment) *Builder {
	if b.err != nil {
		return b
	}

	var meta bytes.Buffer
	mw := binary.NewSafeWriter(&meta)
	mw.SetOrder(b.order)
	if !s.NoMetaData {
		_ = binary.Write(mw, uint32(len(s.Objects)))
		for _, obj := range s.Objects {
			if err := b.object(mw, obj); err != nil {
				b.err = err
				return b
			}
		}
	}

	var toc uint32
	if !s.NoMetaData {
		toc |= 1 << 1
	}
	if s.NewObjectList {
		toc |= 1 << 2
	}
	if len(s.Data) > 0 {
		toc |= 1 << 3
	}
	if s.Interleaved {
		toc |= 1 << 5
	}
	if b.order == binary.BigEndian {
		toc |= 1 << 6
	}

	version := s.Version
	if version == 0 {
		version = 4713
	}
	next := uint64(meta.Len() + len(s.Data))
	if s.Incomplete {
		next = 0xFFFFFFFFFFFFFFFF
	}

	w := binary.NewSafeWriter(&b.buf)
	w.SetOrder(b.order)
	_ = w.WriteString("TDSm")
	_ = binary.WriteLE(w, toc)
	_ = binary.Write(w, version)
	_ = binary.Write(w, next)
	_ = binary.Write(w, uint64(meta.Len()))
	_ = w.WriteBytes(meta.Bytes())
	_ = w.WriteBytes(s.Data)
	return b
}

func (b *Builder) object(w *binary.SafeWriter, obj Object) error {
	writeString(w, obj.Path)

	switch obj.IndexKind {
	case IndexNone:
		_ = binary.Write(w, uint32(0xFFFFFFFF))
	case IndexSame:
		_ = binary.Write(w, uint32(0))
	case IndexNew:
		length := uint32(20)
		if obj.DataType == TypeString {
			length = 28
		}
		_ = binary.Write(w, length)
		_ = binary.Write(w, obj.DataType)
		_ = binary.Write(w, uint32(1))
		_ = binary.Write(w, obj.Values)
		if obj.DataType == TypeString {
			_ = binary.Write(w, obj.TotalSize)
		}
	}

	_ = binary.Write(w, uint32(len(obj.Props)))
	for _, p := range obj.Props {
		writeString(w, p.Name)
		if err := b.value(w, p.Value); err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
	}
	return nil
}

func (b *Builder) value(w *binary.SafeWriter, v any) error {
	switch v := v.(type) {
	case int32:
		_ = binary.Write(w, TypeI32)
		_ = binary.Write(w, v)
	case int64:
		_ = binary.Write(w, TypeI64)
		_ = binary.Write(w, v)
	case uint32:
		_ = binary.Write(w, TypeU32)
		_ = binary.Write(w, v)
	case uint64:
		_ = binary.Write(w, TypeU64)
		_ = binary.Write(w, v)
	case float32:
		_ = binary.Write(w, TypeSingle)
		_ = binary.Write(w, v)
	case float64:
		_ = binary.Write(w, TypeDouble)
		_ = binary.Write(w, v)
	case string:
		_ = binary.Write(w, TypeString)
		writeString(w, v)
	case bool:
		_ = binary.Write(w, TypeBool)
		var c uint8
		if v {
			c = 1
		}
		_ = binary.Write(w, c)
	case time.Time:
		_ = binary.Write(w, TypeTimestamp)
		seconds, fractions := EncodeTimestamp(v)
		if b.order == binary.LittleEndian {
			_ = binary.Write(w, fractions)
			_ = binary.Write(w, seconds)
		} else {
			_ = binary.Write(w, seconds)
			_ = binary.Write(w, fractions)
		}
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func writeString(w *binary.SafeWriter, s string) {
	_ = binary.Write(w, uint32(len(s)))
	_ = w.WriteString(s)
}

// EncodeTimestamp converts t to TDMS seconds since 1904 and 2^-64 fractions.
func EncodeTimestamp(t time.Time) (int64, uint64) {
	const offset1904 = 2082844800
	fractions, _ := bits.Div64(uint64(t.Nanosecond()), 0, uint64(time.Second))
	return t.Unix() + offset1904, fractions
}

// Bytes returns the encoded file.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// WriteFile writes the encoded file into a temporary directory and returns
// its path.
func (b *Builder) WriteFile(tb testing.TB, name string) string {
	tb.Helper()
	if b.err != nil {
		tb.Fatalf("tdmstest: %v", b.err)
	}
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, b.buf.Bytes(), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

// Err returns the first error encountered while building.
func (b *Builder) Err() error {
	return b.err
}
