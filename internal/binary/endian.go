package binary

import (
	"encoding/binary"
	"math"
)

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian uses big-endian byte order.
	// Used by: binary header interpretation, big-endian TDMS segments, "MI" MAT-files.
	BigEndian Endianness = iota

	// LittleEndian uses little-endian byte order.
	// Used by: TDMS lead-ins and default segments, "IM" MAT-files.
	LittleEndian
)

// ByteOrder returns the encoding/binary byte order for e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (e Endianness) appendOrder() binary.AppendByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (e Endianness) String() string {
	if e == LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

// Number is the set of fixed-width numeric types the readers can decode.
type Number interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | float32 | float64
}

// SizeOf returns the encoded width of T in bytes.
func SizeOf[T Number]() int {
	var zero T
	switch any(zero).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	case uint32, int32, float32:
		return 4
	default:
		return 8
	}
}

// Decode interprets the first SizeOf[T]() bytes of b as a T.
// b must be at least that long.
func Decode[T Number](b []byte, endian Endianness) T {
	order := endian.ByteOrder()

	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(b[0])
	case int8:
		return T(int8(b[0]))
	case uint16:
		return T(order.Uint16(b))
	case int16:
		return T(int16(order.Uint16(b)))
	case uint32:
		return T(order.Uint32(b))
	case int32:
		return T(int32(order.Uint32(b)))
	case uint64:
		return T(order.Uint64(b))
	case int64:
		return T(int64(order.Uint64(b)))
	case float32:
		return T(math.Float32frombits(order.Uint32(b)))
	case float64:
		return T(math.Float64frombits(order.Uint64(b)))
	}
	return zero
}

// Encode appends the encoding of val to b.
func Encode[T Number](b []byte, val T, endian Endianness) []byte {
	order := endian.appendOrder()

	switch v := any(val).(type) {
	case uint8:
		return append(b, v)
	case int8:
		return append(b, byte(v))
	case uint16:
		return order.AppendUint16(b, v)
	case int16:
		return order.AppendUint16(b, uint16(v))
	case uint32:
		return order.AppendUint32(b, v)
	case int32:
		return order.AppendUint32(b, uint32(v))
	case uint64:
		return order.AppendUint64(b, v)
	case int64:
		return order.AppendUint64(b, uint64(v))
	case float32:
		return order.AppendUint32(b, math.Float32bits(v))
	case float64:
		return order.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

// ReadLE reads a numeric value of type T at the given offset using little-endian byte order.
//
// Example:
//
//	count, err := binary.ReadLE[uint32](sr, offset, "object count")
func ReadLE[T Number](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, LittleEndian)
}

// ReadBE reads a numeric value of type T at the given offset using big-endian byte order.
//
// Equivalent to Read() but more explicit about byte order.
func ReadBE[T Number](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// ReadEndian reads a numeric value of type T at the given offset with specified byte order.
//
// This is the low-level function used by Read, ReadLE, and ReadBE.
// Most code should use the convenience wrappers instead.
func ReadEndian[T Number](sr *SafeReader, off int64, what string, endian Endianness) (T, error) {
	buf := make([]byte, SizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](buf, endian), nil
}
