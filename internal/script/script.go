// Package script reads script-like text files (MATLAB .m) line by line.
//
// No syntax is interpreted; the record is the file's lines in order.
package script

import (
	"os"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/parsing"
	"github.com/simonhull/labmeta/internal/registry"
	"github.com/simonhull/labmeta/internal/types"
)

func init() {
	registry.Register(types.FormatScript, registry.ExtractorFunc(func(path string, opts types.Options) (types.Record, error) {
		return Extract(path, opts)
	}))
}

// Extract returns the lines of path with their terminators.
func Extract(path string, opts types.Options) (*types.ScriptRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}

	if !utf8.Valid(data) {
		return nil, &types.CorruptedFileError{
			Path:   path,
			Offset: int64(firstInvalid(data)),
			Reason: "script is not valid UTF-8 text",
		}
	}

	lines := parsing.Lines(string(data))
	opts.Log().Debug("script read", "path", path, "lines", len(lines))
	return &types.ScriptRecord{Lines: lines}, nil
}

func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}
