package binary

import (
	"io"
)

// SafeWriter wraps io.Writer with position tracking.
//
// It is the encoding counterpart of Reader and is used to build TDMS and
// MAT-file fixtures.
type SafeWriter struct {
	w      io.Writer
	offset int64
	order  Endianness
}

// NewSafeWriter creates a new big-endian SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{w: w}
}

// SetOrder switches the byte order used by subsequent writes.
func (sw *SafeWriter) SetOrder(order Endianness) {
	sw.order = order
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// Write writes a value of type T in the writer's byte order.
func Write[T Number](sw *SafeWriter, val T) error {
	return sw.WriteBytes(Encode(nil, val, sw.order))
}

// WriteLE writes a value of type T in little-endian byte order regardless
// of the writer's configured order.
func WriteLE[T Number](sw *SafeWriter, val T) error {
	return sw.WriteBytes(Encode(nil, val, LittleEndian))
}
