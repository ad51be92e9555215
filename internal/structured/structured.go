// Package structured extracts the variables of a serialized data
// container through a pluggable decoder.
package structured

import (
	"os"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/matfile"
	"github.com/simonhull/labmeta/internal/registry"
	"github.com/simonhull/labmeta/internal/types"
)

func init() {
	registry.Register(types.FormatStructuredData, registry.ExtractorFunc(func(path string, opts types.Options) (types.Record, error) {
		return Extract(path, opts)
	}))
}

// Extract decodes path with opts.StructuredDecoder, or the MAT-file
// decoder when none is set. Decoder errors are returned wrapped; their
// typed causes remain reachable with errors.As.
func Extract(path string, opts types.Options) (*types.StructuredDataRecord, error) {
	dec := opts.StructuredDecoder
	if dec == nil {
		dec = matfile.Decoder{}
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

	vars, err := dec.Decode(f, stat.Size(), path)
	if err != nil {
		return nil, errors.Wrap(err, "decode structured data")
	}
	if vars == nil {
		vars = types.NewMetadata()
	}

	opts.Log().Debug("structured data decoded", "path", path, "variables", vars.Len())
	return &types.StructuredDataRecord{Variables: vars}, nil
}
