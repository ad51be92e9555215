package matfile

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/binary"
	"github.com/simonhull/labmeta/internal/types"
)

// Array classes.
const (
	mxCELL   = 1
	mxSTRUCT = 2
	mxOBJECT = 3
	mxCHAR   = 4
	mxSPARSE = 5
	mxDOUBLE = 6
	mxSINGLE = 7
	mxINT8   = 8
	mxUINT8  = 9
	mxINT16  = 10
	mxUINT16 = 11
	mxINT32  = 12
	mxUINT32 = 13
	mxINT64  = 14
	mxUINT64 = 15
)

// Array flag bits.
const (
	flagComplex = 0x08
	flagGlobal  = 0x04
	flagLogical = 0x02
)

type variable struct {
	name   string
	value  any
	global bool
}

type arrayFlags struct {
	class   uint8
	complex bool
	global  bool
	logical bool
}

// matrix decodes a miMATRIX payload. offset locates the enclosing
// top-level element for error reports.
func (d *decoder) matrix(data []byte, offset int64) (variable, error) {
	// Empty cell elements are written as zero-length matrices.
	if len(data) == 0 {
		return variable{value: []any{}}, nil
	}

	r := d.sub(data)

	flagsEl, err := d.readElement(r)
	if err != nil {
		return variable{}, d.corrupt(offset, "array flags: "+err.Error())
	}
	if len(flagsEl.data) < 4 {
		return variable{}, d.corrupt(offset, "array flags too short")
	}
	word := binary.Decode[uint32](flagsEl.data, d.order)
	flags := arrayFlags{
		class:   uint8(word & 0xff),
		complex: (word>>8)&flagComplex != 0,
		global:  (word>>8)&flagGlobal != 0,
		logical: (word>>8)&flagLogical != 0,
	}

	dimsEl, err := d.readElement(r)
	if err != nil {
		return variable{}, d.corrupt(offset, "dimensions: "+err.Error())
	}
	dims := d.dims(dimsEl)

	nameEl, err := d.readElement(r)
	if err != nil {
		return variable{}, d.corrupt(offset, "array name: "+err.Error())
	}
	v := variable{name: string(nameEl.data), global: flags.global}

	switch flags.class {
	case mxDOUBLE, mxSINGLE, mxINT8, mxUINT8, mxINT16, mxUINT16, mxINT32, mxUINT32, mxINT64, mxUINT64:
		v.value, err = d.numeric(r, flags, dims, offset)
	case mxCHAR:
		v.value, err = d.chars(r, dims, offset)
	case mxCELL:
		v.value, err = d.cell(r, dims, offset)
	case mxSTRUCT:
		v.value, err = d.structure(r, dims, offset)
	case mxSPARSE:
		v.value = opaque("sparse", dims)
	case mxOBJECT:
		v.value = opaque("object", dims)
	default:
		return variable{}, d.corrupt(offset, fmt.Sprintf("unknown array class %d", flags.class))
	}
	if err != nil {
		return variable{}, err
	}
	return v, nil
}

func (d *decoder) dims(el element) []int {
	n := len(el.data) / 4
	dims := make([]int, n)
	for i := range dims {
		dims[i] = int(binary.Decode[int32](el.data[i*4:], d.order))
	}
	return dims
}

func (d *decoder) numeric(r *binary.Reader, flags arrayFlags, dims []int, offset int64) (any, error) {
	realEl, err := d.readElement(r)
	if err != nil {
		return nil, d.corrupt(offset, "real part: "+err.Error())
	}
	re, err := d.values(realEl, flags)
	if err != nil {
		return nil, d.corrupt(offset, err.Error())
	}

	if !flags.complex {
		return shape(dims, re), nil
	}

	imagEl, err := d.readElement(r)
	if err != nil {
		return nil, d.corrupt(offset, "imaginary part: "+err.Error())
	}
	im, err := d.values(imagEl, flags)
	if err != nil {
		return nil, d.corrupt(offset, err.Error())
	}
	if len(im) != len(re) {
		return nil, d.corrupt(offset, "real and imaginary parts differ in length")
	}

	pairs := make([]any, len(re))
	for i := range re {
		pairs[i] = []any{re[i], im[i]}
	}
	return shape(dims, pairs), nil
}

// values converts a numeric element to Go values of the array's class.
// The storage type may be narrower than the class.
func (d *decoder) values(el element, flags arrayFlags) ([]any, error) {
	switch el.typ {
	case miINT8:
		return convert(decodeAll[int8](el.data, d.order), flags), nil
	case miUINT8:
		return convert(decodeAll[uint8](el.data, d.order), flags), nil
	case miINT16:
		return convert(decodeAll[int16](el.data, d.order), flags), nil
	case miUINT16:
		return convert(decodeAll[uint16](el.data, d.order), flags), nil
	case miINT32:
		return convert(decodeAll[int32](el.data, d.order), flags), nil
	case miUINT32:
		return convert(decodeAll[uint32](el.data, d.order), flags), nil
	case miINT64:
		return convert(decodeAll[int64](el.data, d.order), flags), nil
	case miUINT64:
		return convert(decodeAll[uint64](el.data, d.order), flags), nil
	case miSINGLE:
		return convert(decodeAll[float32](el.data, d.order), flags), nil
	case miDOUBLE:
		return convert(decodeAll[float64](el.data, d.order), flags), nil
	default:
		return nil, errors.Newf("unexpected numeric storage type %d", el.typ)
	}
}

func decodeAll[T binary.Number](data []byte, order binary.Endianness) []T {
	w := binary.SizeOf[T]()
	out := make([]T, len(data)/w)
	for i := range out {
		out[i] = binary.Decode[T](data[i*w:], order)
	}
	return out
}

func convert[T binary.Number](vals []T, flags arrayFlags) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		switch {
		case flags.logical:
			out[i] = v != 0
		case flags.class == mxDOUBLE || flags.class == mxSINGLE:
			out[i] = float64(v)
		case flags.class == mxUINT8 || flags.class == mxUINT16 || flags.class == mxUINT32 || flags.class == mxUINT64:
			out[i] = uint64(v)
		default:
			out[i] = int64(v)
		}
	}
	return out
}

func (d *decoder) chars(r *binary.Reader, dims []int, offset int64) (any, error) {
	el, err := d.readElement(r)
	if err != nil {
		return nil, d.corrupt(offset, "char data: "+err.Error())
	}

	var runes []rune
	switch el.typ {
	case miUTF8, miUINT8, miINT8:
		for b := el.data; len(b) > 0; {
			c, size := utf8.DecodeRune(b)
			runes = append(runes, c)
			b = b[size:]
		}
	case miUTF16, miUINT16:
		runes = utf16.Decode(decodeAll[uint16](el.data, d.order))
	case miUTF32, miUINT32, miINT32:
		for _, c := range decodeAll[uint32](el.data, d.order) {
			runes = append(runes, rune(c))
		}
	default:
		return nil, d.corrupt(offset, fmt.Sprintf("unexpected char storage type %d", el.typ))
	}

	// Characters are stored column-major; rebuild rows.
	if n, ok := count(dims); !ok || len(dims) != 2 || n != len(runes) || dims[0] <= 1 {
		return string(runes), nil
	}
	rows, cols := dims[0], dims[1]
	lines := make([]string, rows)
	for i := range rows {
		var sb strings.Builder
		for j := range cols {
			sb.WriteRune(runes[j*rows+i])
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n"), nil
}

func (d *decoder) cell(r *binary.Reader, dims []int, offset int64) (any, error) {
	n, err := d.elements(r, dims, 1, offset)
	if err != nil {
		return nil, err
	}
	vals := make([]any, 0, n)
	for range n {
		el, err := d.readElement(r)
		if err != nil {
			return nil, d.corrupt(offset, "cell element: "+err.Error())
		}
		v, err := d.matrix(el.data, offset)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v.value)
	}
	return shape(dims, vals), nil
}

func (d *decoder) structure(r *binary.Reader, dims []int, offset int64) (any, error) {
	lenEl, err := d.readElement(r)
	if err != nil || len(lenEl.data) < 4 {
		return nil, d.corrupt(offset, "struct field name length")
	}
	nameLen := int(binary.Decode[int32](lenEl.data, d.order))
	if nameLen <= 0 {
		return nil, d.corrupt(offset, "invalid struct field name length")
	}

	namesEl, err := d.readElement(r)
	if err != nil {
		return nil, d.corrupt(offset, "struct field names: "+err.Error())
	}
	var fields []string
	for b := namesEl.data; len(b) >= nameLen; b = b[nameLen:] {
		fields = append(fields, strings.TrimRight(string(b[:nameLen]), "\x00"))
	}

	n, err := d.elements(r, dims, len(fields), offset)
	if err != nil {
		return nil, err
	}
	vals := make([]any, 0, n)
	for range n {
		md := types.NewMetadata()
		for _, field := range fields {
			el, err := d.readElement(r)
			if err != nil {
				return nil, d.corrupt(offset, fmt.Sprintf("struct field %q: %v", field, err))
			}
			v, err := d.matrix(el.data, offset)
			if err != nil {
				return nil, err
			}
			md.Set(field, v.value)
		}
		vals = append(vals, md)
	}
	return shape(dims, vals), nil
}

func opaque(class string, dims []int) *types.Metadata {
	md := types.NewMetadata()
	md.Set("class", class)
	md.Set("dims", intList(dims))
	return md
}

// maxFieldlessElements bounds struct arrays without fields, whose
// elements occupy no bytes on disk.
const maxFieldlessElements = 1 << 16

// elements returns the element count of a cell or struct array whose
// elements each hold per tagged sub-elements. Counts the remaining bytes
// cannot hold are rejected before anything is allocated.
func (d *decoder) elements(r *binary.Reader, dims []int, per int, offset int64) (int, error) {
	n, ok := count(dims)
	if !ok {
		return 0, d.corrupt(offset, fmt.Sprintf("array dimensions %v overflow", dims))
	}
	if per == 0 {
		if n > maxFieldlessElements {
			return 0, d.corrupt(offset, fmt.Sprintf("struct array of %d elements has no fields", n))
		}
		return n, nil
	}

	// Every sub-element carries at least an 8-byte tag.
	room := (r.Size() - r.Offset()) / 8 / int64(per)
	if int64(n) > room {
		return 0, d.corrupt(offset, fmt.Sprintf("array of %d elements exceeds remaining data", n))
	}
	return n, nil
}

// count returns the number of elements dims describes. ok is false when
// the product overflows an int.
func count(dims []int) (n int, ok bool) {
	if len(dims) == 0 {
		return 0, true
	}
	n = 1
	for _, d := range dims {
		if d <= 0 {
			return 0, true
		}
		hi, lo := bits.Mul64(uint64(n), uint64(d))
		if hi != 0 || lo > math.MaxInt {
			return 0, false
		}
		n = int(lo)
	}
	return n, true
}

// shape arranges column-major values by dims.
func shape(dims []int, vals []any) any {
	n, ok := count(dims)
	if !ok {
		return vals
	}
	if n == 0 || len(vals) < n {
		if n == 0 {
			return []any{}
		}
		return vals
	}
	if len(dims) != 2 {
		md := types.NewMetadata()
		md.Set("dims", intList(dims))
		md.Set("data", vals[:n])
		return md
	}

	rows, cols := dims[0], dims[1]
	if rows == 1 && cols == 1 {
		return vals[0]
	}
	out := make([]any, rows)
	for i := range rows {
		row := make([]any, cols)
		for j := range cols {
			row[j] = vals[j*rows+i]
		}
		out[i] = row
	}
	return out
}

func intList(dims []int) []any {
	out := make([]any, len(dims))
	for i, d := range dims {
		out[i] = d
	}
	return out
}
