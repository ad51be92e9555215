// Package header interprets the leading byte window of a binary file.
package header

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/binary"
	"github.com/simonhull/labmeta/internal/registry"
	"github.com/simonhull/labmeta/internal/types"
)

func init() {
	registry.Register(types.FormatBinary, registry.ExtractorFunc(func(path string, opts types.Options) (types.Record, error) {
		return Extract(path, opts)
	}))
}

// Extract reads up to opts.HeaderSize bytes from the start of path.
//
// A file shorter than the window is not an error; the record then
// describes the bytes that exist, and the numeric interpretations are nil
// when fewer than 4 bytes were read.
func Extract(path string, opts types.Options) (*types.BinaryHeaderRecord, error) {
	if opts.HeaderSize <= 0 {
		return nil, &types.InvalidOptionError{Option: "header size", Value: opts.HeaderSize}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat file")
	}

	sr := binary.NewSafeReader(f, stat.Size(), path)
	buf := make([]byte, opts.HeaderSize)
	n, err := sr.ReadUpTo(buf, 0)
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	rec := Interpret(buf[:n])
	opts.Log().Debug("binary header read", "path", path, "bytes", n, "window", opts.HeaderSize)
	return rec, nil
}

// Interpret builds the parallel interpretations of a header window.
func Interpret(b []byte) *types.BinaryHeaderRecord {
	rec := &types.BinaryHeaderRecord{
		ASCIIText: asciiText(b),
		Hex:       hex.EncodeToString(b),
		BytesRead: len(b),
	}

	if len(b) >= 4 {
		u := binary.Decode[uint32](b, binary.BigEndian)
		f := binary.Decode[float32](b, binary.BigEndian)
		rec.Integer = &u
		rec.Float = &f
	}

	return rec
}

// asciiText keeps printable ASCII and whitespace, drops every other byte,
// then trims surrounding whitespace.
func asciiText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch {
		case c >= 0x20 && c <= 0x7e:
			sb.WriteByte(c)
		case c == '\t', c == '\n', c == '\v', c == '\f', c == '\r':
			sb.WriteByte(c)
		}
	}
	return strings.TrimSpace(sb.String())
}
