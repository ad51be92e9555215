package matfile

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/simonhull/labmeta/internal/binary"
)

// matWriter builds MAT-file fixtures in either byte order.
type matWriter struct {
	order binary.Endianness
}

func (w matWriter) u32(v uint32) []byte { return binary.Encode(nil, v, w.order) }

// file returns a complete MAT-file: 128-byte header followed by elements.
func (w matWriter) file(text string, version uint16, elements ...[]byte) []byte {
	buf := &bytes.Buffer{}
	sw := binary.NewSafeWriter(buf)
	sw.SetOrder(w.order)

	hdr := make([]byte, headerTextSize)
	for i := range hdr {
		hdr[i] = ' '
	}
	copy(hdr, text)
	_ = sw.WriteBytes(hdr)
	_ = sw.WriteBytes(make([]byte, 8)) // subsystem data offset
	_ = binary.Write(sw, version)
	if w.order == binary.LittleEndian {
		_ = sw.WriteString("IM")
	} else {
		_ = sw.WriteString("MI")
	}
	for _, el := range elements {
		_ = sw.WriteBytes(el)
	}
	return buf.Bytes()
}

func (w matWriter) level5(elements ...[]byte) []byte {
	return w.file("MATLAB 5.0 MAT-file, Platform: GLNXA64, Created on: Mon Mar  4 10:00:00 2024", versionLevel5, elements...)
}

// element writes a regular tag, the data and padding to 8 bytes.
func (w matWriter) element(typ uint32, data []byte) []byte {
	out := append(w.u32(typ), w.u32(uint32(len(data)))...)
	out = append(out, data...)
	if pad := (8 - len(data)%8) % 8; pad > 0 {
		out = append(out, make([]byte, pad)...)
	}
	return out
}

// small writes the compressed tag form for payloads of at most 4 bytes.
func (w matWriter) small(typ uint32, data []byte) []byte {
	out := w.u32(uint32(len(data))<<16 | typ)
	padded := make([]byte, 4)
	copy(padded, data)
	return append(out, padded...)
}

func (w matWriter) doubles(vals ...float64) []byte {
	var b []byte
	for _, v := range vals {
		b = binary.Encode(b, v, w.order)
	}
	return w.element(miDOUBLE, b)
}

func (w matWriter) int32s(vals ...int32) []byte {
	var b []byte
	for _, v := range vals {
		b = binary.Encode(b, v, w.order)
	}
	return w.element(miINT32, b)
}

// matrix writes a miMATRIX element with flags, dims, name and parts.
func (w matWriter) matrix(class uint8, flagBits uint8, dims []int32, name string, parts ...[]byte) []byte {
	var payload []byte
	flags := append(w.u32(uint32(flagBits)<<8|uint32(class)), w.u32(0)...)
	payload = append(payload, w.element(miUINT32, flags)...)
	payload = append(payload, w.int32s(dims...)...)
	payload = append(payload, w.element(miINT8, []byte(name))...)
	for _, p := range parts {
		payload = append(payload, p...)
	}
	return w.element(miMATRIX, payload)
}

func (w matWriter) compressed(t *testing.T, el []byte) []byte {
	t.Helper()
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(el); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	out := append(w.u32(miCOMPRESSED), w.u32(uint32(z.Len()))...)
	return append(out, z.Bytes()...)
}
