package binary

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestReadLE(t *testing.T) {
	buf := &bytes.Buffer{}

	// uint16 513, uint32 67305985, int64 -2, float64 0.01
	binary.Write(buf, binary.LittleEndian, uint16(513))
	binary.Write(buf, binary.LittleEndian, uint32(67305985))
	binary.Write(buf, binary.LittleEndian, int64(-2))
	binary.Write(buf, binary.LittleEndian, float64(0.01))

	data := buf.Bytes()
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.tdms")

	u16, err := ReadLE[uint16](sr, 0, "uint16")
	if err != nil || u16 != 513 {
		t.Errorf("ReadLE[uint16] = %d, %v; want 513", u16, err)
	}

	u32, err := ReadLE[uint32](sr, 2, "uint32")
	if err != nil || u32 != 67305985 {
		t.Errorf("ReadLE[uint32] = %d, %v; want 67305985", u32, err)
	}

	i64, err := ReadLE[int64](sr, 6, "int64")
	if err != nil || i64 != -2 {
		t.Errorf("ReadLE[int64] = %d, %v; want -2", i64, err)
	}

	f64, err := ReadLE[float64](sr, 14, "float64")
	if err != nil || f64 != 0.01 {
		t.Errorf("ReadLE[float64] = %v, %v; want 0.01", f64, err)
	}
}

func TestReadBE_MatchesRead(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.bin")

	a, err := ReadBE[uint32](sr, 0, "be")
	if err != nil {
		t.Fatalf("ReadBE error = %v", err)
	}
	b, err := Read[uint32](sr, 0, "default")
	if err != nil {
		t.Fatalf("Read error = %v", err)
	}
	if a != 1 || b != 1 {
		t.Errorf("ReadBE = %d, Read = %d; want 1", a, b)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		endian Endianness
		got    func([]byte, Endianness) float64
		want   float64
	}{
		{
			name:   "int8 negative",
			data:   []byte{0xFF},
			endian: BigEndian,
			got:    func(b []byte, e Endianness) float64 { return float64(Decode[int8](b, e)) },
			want:   -1,
		},
		{
			name:   "int16 little-endian",
			data:   []byte{0xFE, 0xFF},
			endian: LittleEndian,
			got:    func(b []byte, e Endianness) float64 { return float64(Decode[int16](b, e)) },
			want:   -2,
		},
		{
			name:   "float32 big-endian one",
			data:   []byte{0x3F, 0x80, 0x00, 0x00},
			endian: BigEndian,
			got:    func(b []byte, e Endianness) float64 { return float64(Decode[float32](b, e)) },
			want:   1,
		},
		{
			name:   "uint32 big-endian",
			data:   []byte{0x00, 0x00, 0x01, 0x00},
			endian: BigEndian,
			got:    func(b []byte, e Endianness) float64 { return float64(Decode[uint32](b, e)) },
			want:   256,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got(tt.data, tt.endian); got != tt.want {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeDecode_Float64(t *testing.T) {
	for _, endian := range []Endianness{BigEndian, LittleEndian} {
		b := Encode(nil, math.Pi, endian)
		if len(b) != 8 {
			t.Fatalf("%s: encoded length = %d, want 8", endian, len(b))
		}
		if got := Decode[float64](b, endian); got != math.Pi {
			t.Errorf("%s: Decode(Encode(pi)) = %v", endian, got)
		}
	}
}

func TestSizeOf(t *testing.T) {
	if SizeOf[int8]() != 1 || SizeOf[uint16]() != 2 || SizeOf[float32]() != 4 || SizeOf[int64]() != 8 {
		t.Error("SizeOf returned unexpected widths")
	}
}
