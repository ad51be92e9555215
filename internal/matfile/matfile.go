// Package matfile decodes MATLAB Level 5 MAT-files (versions 5 through 7)
// into a variable-name → value mapping.
//
// The mapping starts with the file-level entries __header__, __version__
// and __globals__, followed by one entry per variable in file order.
// Values are shaped as:
//
//	1×1 numeric or logical   scalar (float64, int64, uint64 or bool)
//	2-D array                list of rows
//	N-D array                {"dims": [...], "data": [... column-major]}
//	empty array              empty list
//	char array               string (rows joined with "\n")
//	complex element          [re, im]
//	struct                   mapping of fields (1×1) or shaped list of them
//	cell                     shaped list of element values
//
// Sparse and object arrays are reported by class and dimensions only.
// MAT v7.3 files are HDF5 containers and are rejected as unsupported.
package matfile

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zlib"

	"github.com/simonhull/labmeta/internal/binary"
	"github.com/simonhull/labmeta/internal/types"
)

const (
	headerSize     = 128
	headerTextSize = 116

	versionLevel5 = 0x0100
	versionHDF5   = 0x0200
)

// Decoder implements types.StructuredDecoder for Level 5 MAT-files.
type Decoder struct {
	// MaxInflated caps the decompressed size of a single compressed
	// variable. Zero means no limit.
	MaxInflated int64
}

// Decode reads every top-level variable of the MAT-file in r.
func (d Decoder) Decode(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	sr := binary.NewSafeReader(r, size, path)

	hdr, err := readHeader(sr)
	if err != nil {
		return nil, err
	}

	out := types.NewMetadata()
	out.Set("__header__", hdr.text)
	out.Set("__version__", "1.0")
	out.Set("__globals__", []any{})

	var globals []any
	dec := &decoder{path: path, order: hdr.order}

	rd := binary.NewReader(sr, headerSize)
	rd.SetOrder(hdr.order)

	for rd.Offset() < size {
		start := rd.Offset()
		el, err := dec.readElement(rd)
		if err != nil {
			// Trailing padding shorter than a tag is tolerated.
			if size-start < 8 {
				break
			}
			return nil, err
		}

		var vars []variable
		switch el.typ {
		case miCOMPRESSED:
			vars, err = d.inflate(dec, el.data, start)
		case miMATRIX:
			var v variable
			v, err = dec.matrix(el.data, start)
			vars = []variable{v}
		default:
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, v := range vars {
			out.Set(v.name, v.value)
			if v.global {
				globals = append(globals, v.name)
			}
		}
	}

	if globals != nil {
		out.Set("__globals__", globals)
	}
	return out, nil
}

type header struct {
	text    string
	order   binary.Endianness
	version uint16
}

func readHeader(sr *binary.SafeReader) (header, error) {
	path := sr.Path()
	if sr.Size() < headerSize {
		return header{}, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "file too small for a Level 5 MAT-file header",
		}
	}

	buf := make([]byte, headerSize)
	if err := sr.ReadAt(buf, 0, "MAT-file header"); err != nil {
		return header{}, errors.Wrap(err, "read MAT-file header")
	}

	var h header
	switch string(buf[126:128]) {
	case "IM":
		h.order = binary.LittleEndian
	case "MI":
		h.order = binary.BigEndian
	default:
		return header{}, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "missing MAT-file endian indicator (Level 4 or not a MAT-file)",
		}
	}

	h.version = binary.Decode[uint16](buf[124:126], h.order)
	h.text = strings.TrimRight(string(buf[:headerTextSize]), " \x00")

	switch h.version {
	case versionLevel5:
		return h, nil
	case versionHDF5:
		return header{}, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "MAT v7.3 (HDF5) files are not supported",
		}
	default:
		return header{}, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "unknown MAT-file version",
		}
	}
}

// inflate decompresses a miCOMPRESSED payload and decodes the elements it
// holds. offset is the position of the compressed element in the file.
func (d Decoder) inflate(dec *decoder, payload []byte, offset int64) ([]variable, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, dec.corrupt(offset, "compressed element: "+err.Error())
	}
	defer zr.Close()

	var src io.Reader = zr
	if d.MaxInflated > 0 {
		src = io.LimitReader(zr, d.MaxInflated+1)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, dec.corrupt(offset, "inflate compressed element: "+err.Error())
	}
	if d.MaxInflated > 0 && int64(len(raw)) > d.MaxInflated {
		return nil, dec.corrupt(offset, "compressed element exceeds inflate limit")
	}

	rd := dec.sub(raw)

	var vars []variable
	for rd.Offset() < int64(len(raw)) {
		el, err := dec.readElement(rd)
		if err != nil {
			return nil, dec.corrupt(offset, "element inside compressed data: "+err.Error())
		}
		if el.typ != miMATRIX {
			continue
		}
		v, err := dec.matrix(el.data, offset)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}
