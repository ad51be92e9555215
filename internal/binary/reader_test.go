package binary

import (
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/simonhull/labmeta/internal/types"
)

// mockReader implements io.ReaderAt for testing.
type mockReader struct {
	data []byte
}

func (m *mockReader) ReadAt(p []byte, off int64) (n int, err error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestSafeReader_ReadAt_Success(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.bin")

	buf := make([]byte, 2)
	if err := sr.ReadAt(buf, 0, "test read"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("expected [0x01, 0x02], got [0x%02x, 0x%02x]", buf[0], buf[1])
	}
}

func TestSafeReader_ReadAt_OutOfBounds(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.tdms")

	err := sr.ReadAt(make([]byte, 2), 10, "out of bounds read")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var oob *types.OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("expected *types.OutOfBoundsError, got %T", err)
	}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "test.tdms") {
		t.Errorf("error should contain filename: %v", errMsg)
	}
	if !strings.Contains(errMsg, "out of bounds read") {
		t.Errorf("error should contain context: %v", errMsg)
	}
}

func TestSafeReader_ReadAt_CrossesEnd(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.mat")

	err := sr.ReadAt(make([]byte, 4), 2, "straddling read")
	if err == nil || !strings.Contains(err.Error(), "exceed file size") {
		t.Errorf("expected exceed error, got %v", err)
	}
}

func TestSafeReader_ReadUpTo(t *testing.T) {
	data := []byte{0x0a, 0x0b, 0x0c}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "short.bin")

	buf := make([]byte, 64)
	n, err := sr.ReadUpTo(buf, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("ReadUpTo() = %d bytes, want 3", n)
	}

	n, err = sr.ReadUpTo(buf, 5)
	if err != nil || n != 0 {
		t.Errorf("ReadUpTo past end = %d, %v; want 0, nil", n, err)
	}
}

func TestRead_Uint32(t *testing.T) {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, 0x12345678)
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.bin")

	val, err := Read[uint32](sr, 0, "test uint32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if val != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08x", val)
	}
}

func TestReader_Sequential(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.bin")
	r := NewReader(sr, 0)

	val1, err := ReadValue[uint8](r, "first byte")
	if err != nil {
		t.Fatalf("read 1 failed: %v", err)
	}
	if val1 != 0x01 {
		t.Errorf("expected 0x01, got 0x%02x", val1)
	}

	val2, err := ReadValue[uint16](r, "next two bytes")
	if err != nil {
		t.Fatalf("read 2 failed: %v", err)
	}
	if val2 != 0x0203 {
		t.Errorf("expected 0x0203, got 0x%04x", val2)
	}

	r.SetOrder(LittleEndian)
	val3, err := ReadValue[uint16](r, "little-endian pair")
	if err != nil {
		t.Fatalf("read 3 failed: %v", err)
	}
	if val3 != 0x0504 {
		t.Errorf("expected 0x0504, got 0x%04x", val3)
	}

	if r.Offset() != 5 {
		t.Errorf("expected offset 5, got %d", r.Offset())
	}
}

func TestReader_ReadString(t *testing.T) {
	data := []byte("TDSm\x00\x00")
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.tdms")
	r := NewReader(sr, 0)

	s, err := r.ReadString(4, "tag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "TDSm" {
		t.Errorf("ReadString() = %q, want %q", s, "TDSm")
	}

	r.Seek(0)
	r.Skip(2)
	if r.Offset() != 2 {
		t.Errorf("offset after seek/skip = %d, want 2", r.Offset())
	}
}

func TestChainReader(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x02, 'h', 'i'}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.bin")
	cr := NewChainReader(NewReader(sr, 0))

	n := ReadChained[uint32](cr, "length")
	s := cr.String(int(n), "text")
	if err := cr.Error(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "hi" {
		t.Errorf("String() = %q, want %q", s, "hi")
	}

	// A failing read poisons every later read.
	_ = ReadChained[uint64](cr, "past end")
	if cr.Error() == nil {
		t.Fatal("expected accumulated error")
	}
	if got := ReadChained[uint8](cr, "after error"); got != 0 {
		t.Errorf("read after error = %d, want 0", got)
	}
}
