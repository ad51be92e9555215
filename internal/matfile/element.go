package matfile

import (
	"bytes"
	"fmt"

	"github.com/simonhull/labmeta/internal/binary"
	"github.com/simonhull/labmeta/internal/types"
)

// Data element types.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
	miUTF32      = 18
)

type element struct {
	typ  uint32
	data []byte
}

type decoder struct {
	path  string
	order binary.Endianness
}

func (d *decoder) corrupt(offset int64, reason string) error {
	return &types.CorruptedFileError{Path: d.path, Offset: offset, Reason: reason}
}

// readElement reads one tagged data element and advances past its padding.
//
// Small elements pack type and size into the first word and carry up to 4
// bytes of data inline. Regular elements are padded to 8 bytes, except
// miCOMPRESSED which is stored unpadded.
func (d *decoder) readElement(r *binary.Reader) (element, error) {
	start := r.Offset()

	first, err := binary.ReadValue[uint32](r, "element tag")
	if err != nil {
		return element{}, d.corrupt(start, "truncated element tag")
	}

	if n := first >> 16; n != 0 {
		if n > 4 {
			return element{}, d.corrupt(start, fmt.Sprintf("small element claims %d bytes", n))
		}
		data, err := r.ReadBytes(4, "small element data")
		if err != nil {
			return element{}, d.corrupt(start, "truncated small element")
		}
		return element{typ: first & 0xffff, data: data[:n]}, nil
	}

	n, err := binary.ReadValue[uint32](r, "element size")
	if err != nil {
		return element{}, d.corrupt(start, "truncated element tag")
	}

	data, err := r.ReadBytes(int(n), "element data")
	if err != nil {
		return element{}, d.corrupt(start, fmt.Sprintf("element of %d bytes runs past end of data", n))
	}

	if first != miCOMPRESSED {
		if pad := (8 - int64(n)%8) % 8; pad > 0 {
			r.Skip(pad)
		}
	}
	return element{typ: first, data: data}, nil
}

// sub returns a reader positioned at the start of an element payload.
func (d *decoder) sub(data []byte) *binary.Reader {
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), d.path)
	r := binary.NewReader(sr, 0)
	r.SetOrder(d.order)
	return r
}
