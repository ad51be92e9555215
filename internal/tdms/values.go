package tdms

import (
	"fmt"
	"math/bits"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/binary"
)

// DataType identifies the type of a property value or of channel samples.
type DataType uint32

// TDMS data types.
const (
	TypeVoid          DataType = 0x00
	TypeI8            DataType = 0x01
	TypeI16           DataType = 0x02
	TypeI32           DataType = 0x03
	TypeI64           DataType = 0x04
	TypeU8            DataType = 0x05
	TypeU16           DataType = 0x06
	TypeU32           DataType = 0x07
	TypeU64           DataType = 0x08
	TypeSingle        DataType = 0x09
	TypeDouble        DataType = 0x0A
	TypeExtended      DataType = 0x0B
	TypeSingleUnit    DataType = 0x19
	TypeDoubleUnit    DataType = 0x1A
	TypeExtendedUnit  DataType = 0x1B
	TypeString        DataType = 0x20
	TypeBool          DataType = 0x21
	TypeTimestamp     DataType = 0x44
	TypeFixedPoint    DataType = 0x4F
	TypeComplexSingle DataType = 0x08000C
	TypeComplexDouble DataType = 0x10000D
	TypeDAQmxRawData  DataType = 0xFFFFFFFF
)

// Size returns the encoded width of one value, or 0 for variable-width
// and unknown types.
func (t DataType) Size() int {
	switch t {
	case TypeI8, TypeU8, TypeBool:
		return 1
	case TypeI16, TypeU16:
		return 2
	case TypeI32, TypeU32, TypeSingle, TypeSingleUnit:
		return 4
	case TypeI64, TypeU64, TypeDouble, TypeDoubleUnit, TypeComplexSingle, TypeFixedPoint:
		return 8
	case TypeExtended, TypeExtendedUnit, TypeTimestamp, TypeComplexDouble:
		return 16
	default:
		return 0
	}
}

func (t DataType) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeI8:
		return "int8"
	case TypeI16:
		return "int16"
	case TypeI32:
		return "int32"
	case TypeI64:
		return "int64"
	case TypeU8:
		return "uint8"
	case TypeU16:
		return "uint16"
	case TypeU32:
		return "uint32"
	case TypeU64:
		return "uint64"
	case TypeSingle, TypeSingleUnit:
		return "float32"
	case TypeDouble, TypeDoubleUnit:
		return "float64"
	case TypeExtended, TypeExtendedUnit:
		return "extended"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeFixedPoint:
		return "fixed-point"
	case TypeComplexSingle:
		return "complex64"
	case TypeComplexDouble:
		return "complex128"
	case TypeDAQmxRawData:
		return "daqmx"
	default:
		return fmt.Sprintf("type(0x%X)", uint32(t))
	}
}

// epoch1904 is the TDMS timestamp origin.
var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// DecodeTimestamp converts TDMS seconds and 2^-64 fractions to a UTC time.
func DecodeTimestamp(seconds int64, fractions uint64) time.Time {
	ns, lo := bits.Mul64(fractions, uint64(time.Second))
	if lo >= 1<<63 {
		ns++
	}
	return time.Unix(epoch1904.Unix()+seconds, int64(ns)).UTC()
}

// readString reads a length-prefixed UTF-8 string.
func readString(r *binary.Reader, what string) (string, error) {
	n, err := binary.ReadValue[uint32](r, what+" length")
	if err != nil {
		return "", err
	}
	if int64(n) > r.Size()-r.Offset() {
		return "", errors.Newf("%s length %d exceeds remaining %d bytes", what, n, r.Size()-r.Offset())
	}
	return r.ReadString(int(n), what)
}

// readValue reads a single property value. Integers widen to int64 or
// uint64, floats to float64, timestamps become time.Time and complex
// values a [re, im] pair.
func readValue(r *binary.Reader, t DataType) (any, error) {
	switch t {
	case TypeI8:
		v, err := binary.ReadValue[int8](r, "int8 value")
		return int64(v), err
	case TypeI16:
		v, err := binary.ReadValue[int16](r, "int16 value")
		return int64(v), err
	case TypeI32:
		v, err := binary.ReadValue[int32](r, "int32 value")
		return int64(v), err
	case TypeI64:
		return binary.ReadValue[int64](r, "int64 value")
	case TypeU8:
		v, err := binary.ReadValue[uint8](r, "uint8 value")
		return uint64(v), err
	case TypeU16:
		v, err := binary.ReadValue[uint16](r, "uint16 value")
		return uint64(v), err
	case TypeU32:
		v, err := binary.ReadValue[uint32](r, "uint32 value")
		return uint64(v), err
	case TypeU64:
		return binary.ReadValue[uint64](r, "uint64 value")
	case TypeSingle, TypeSingleUnit:
		v, err := binary.ReadValue[float32](r, "float32 value")
		return float64(v), err
	case TypeDouble, TypeDoubleUnit:
		return binary.ReadValue[float64](r, "float64 value")
	case TypeString:
		return readString(r, "string value")
	case TypeBool:
		v, err := binary.ReadValue[uint8](r, "bool value")
		return v != 0, err
	case TypeTimestamp:
		return readTimestamp(r)
	case TypeComplexSingle:
		cr := binary.NewChainReader(r)
		re := binary.ReadChained[float32](cr, "complex real part")
		im := binary.ReadChained[float32](cr, "complex imaginary part")
		return []any{float64(re), float64(im)}, cr.Error()
	case TypeComplexDouble:
		cr := binary.NewChainReader(r)
		re := binary.ReadChained[float64](cr, "complex real part")
		im := binary.ReadChained[float64](cr, "complex imaginary part")
		return []any{re, im}, cr.Error()
	case TypeExtended, TypeExtendedUnit:
		// 80-bit floats have no Go counterpart; keep the raw bytes.
		b, err := r.ReadBytes(16, "extended value")
		return fmt.Sprintf("%x", b), err
	default:
		return nil, errors.Newf("unsupported property type %s", t)
	}
}

// readTimestamp reads a 16-byte timestamp. Little-endian files store the
// fractions first; big-endian files store the seconds first.
func readTimestamp(r *binary.Reader) (time.Time, error) {
	cr := binary.NewChainReader(r)
	var seconds int64
	var fractions uint64
	if r.Order() == binary.LittleEndian {
		fractions = binary.ReadChained[uint64](cr, "timestamp fractions")
		seconds = binary.ReadChained[int64](cr, "timestamp seconds")
	} else {
		seconds = binary.ReadChained[int64](cr, "timestamp seconds")
		fractions = binary.ReadChained[uint64](cr, "timestamp fractions")
	}
	if err := cr.Error(); err != nil {
		return time.Time{}, err
	}
	return DecodeTimestamp(seconds, fractions), nil
}

// SplitPath parses an object path into its names:
//
//	"/"           → []
//	"/'g'"        → ["g"]
//	"/'g'/'c'"    → ["g", "c"]
//
// A quote inside a name is written as two quotes.
func SplitPath(p string) ([]string, error) {
	if p == "/" {
		return nil, nil
	}

	var names []string
	i := 0
	for i < len(p) {
		if p[i] != '/' || i+1 >= len(p) || p[i+1] != '\'' {
			return nil, errors.Newf("malformed object path %q", p)
		}
		i += 2

		var sb strings.Builder
		closed := false
		for i < len(p) {
			if p[i] == '\'' {
				if i+1 < len(p) && p[i+1] == '\'' {
					sb.WriteByte('\'')
					i += 2
					continue
				}
				i++
				closed = true
				break
			}
			sb.WriteByte(p[i])
			i++
		}
		if !closed {
			return nil, errors.Newf("unterminated name in object path %q", p)
		}
		names = append(names, sb.String())
	}

	if len(names) > 2 {
		return nil, errors.Newf("object path %q is nested deeper than group/channel", p)
	}
	return names, nil
}
