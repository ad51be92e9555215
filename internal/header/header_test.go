package header

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/labmeta/internal/types"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtract_IntegerOne(t *testing.T) {
	data := append([]byte{0x00, 0x00, 0x00, 0x01}, make([]byte, 60)...)
	rec, err := Extract(writeFile(t, data), types.DefaultOptions())
	require.NoError(t, err)

	require.NotNil(t, rec.Integer)
	assert.Equal(t, uint32(1), *rec.Integer)
	require.NotNil(t, rec.Float)
	assert.Equal(t, math.Float32frombits(1), *rec.Float)
	assert.Equal(t, 64, rec.BytesRead)
	assert.Len(t, rec.Hex, 128)
	assert.Equal(t, "", rec.ASCIIText)
}

func TestExtract_ShortFiles(t *testing.T) {
	for n := 0; n < 4; n++ {
		data := []byte("abc")[:n]
		rec, err := Extract(writeFile(t, data), types.DefaultOptions())
		require.NoError(t, err)

		assert.Nil(t, rec.Integer, "n=%d", n)
		assert.Nil(t, rec.Float, "n=%d", n)
		assert.Len(t, rec.Hex, 2*n)
		assert.Equal(t, n, rec.BytesRead)

		md := rec.Metadata()
		assert.True(t, md.Has("interpreted_integer"))
		assert.True(t, md.Has("interpreted_float"))
	}
}

func TestExtract_WindowLargerThanFile(t *testing.T) {
	opts := types.DefaultOptions()
	opts.HeaderSize = 1024
	rec, err := Extract(writeFile(t, []byte("LABDATA v2\x00\x01")), opts)
	require.NoError(t, err)

	assert.Equal(t, 12, rec.BytesRead)
	assert.Equal(t, "LABDATA v2", rec.ASCIIText)
	assert.Equal(t, "4c4142444154412076320001", rec.Hex)
}

func TestExtract_WindowSmallerThanFile(t *testing.T) {
	opts := types.DefaultOptions()
	opts.HeaderSize = 4
	rec, err := Extract(writeFile(t, []byte("ABCDEFGH")), opts)
	require.NoError(t, err)

	assert.Equal(t, "ABCD", rec.ASCIIText)
	assert.Equal(t, "41424344", rec.Hex)
	assert.Equal(t, uint32(0x41424344), *rec.Integer)
}

func TestExtract_InvalidHeaderSize(t *testing.T) {
	opts := types.DefaultOptions()
	opts.HeaderSize = 0
	_, err := Extract(writeFile(t, []byte("x")), opts)

	var optErr *types.InvalidOptionError
	assert.ErrorAs(t, err, &optErr)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope.bin"), types.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestInterpret_ASCII(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("hello"), "hello"},
		{"surrounding whitespace", []byte("  \thello\r\n"), "hello"},
		{"high bytes dropped", []byte{'h', 0xff, 'i', 0x80}, "hi"},
		{"control bytes dropped", []byte{0x00, 'a', 0x01, 'b', 0x7f}, "ab"},
		{"interior newline kept", []byte("a\nb"), "a\nb"},
		{"nothing printable", []byte{0x00, 0x01, 0x02}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpret(tt.in).ASCIIText)
		})
	}
}

func TestInterpret_Float(t *testing.T) {
	rec := Interpret([]byte{0x3f, 0x80, 0x00, 0x00, 0xaa})
	assert.Equal(t, float32(1.0), *rec.Float)
	assert.Equal(t, uint32(0x3f800000), *rec.Integer)
	assert.Equal(t, "3f800000aa", rec.Hex)
}

func TestExtract_Idempotent(t *testing.T) {
	path := writeFile(t, []byte("\x00\x00\x00\x2aheader text"))
	first, err := Extract(path, types.DefaultOptions())
	require.NoError(t, err)
	second, err := Extract(path, types.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
