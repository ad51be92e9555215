// Package registry maps file formats to their extractors.
package registry

import (
	"github.com/simonhull/labmeta/internal/types"
)

// Extractor is the interface every format package implements.
type Extractor interface {
	// Extract reads path and builds its record. Extractors own the file
	// handle for the duration of the call and close it before returning.
	Extract(path string, opts types.Options) (types.Record, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(path string, opts types.Options) (types.Record, error)

// Extract calls f.
func (f ExtractorFunc) Extract(path string, opts types.Options) (types.Record, error) {
	return f(path, opts)
}

// extractors maps formats to their extractors.
var extractors = make(map[types.Format]Extractor)

// Register registers an extractor for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, extractor Extractor) {
	extractors[format] = extractor
}

// Get returns the extractor for a given format.
// Returns nil if no extractor is registered for the format.
func Get(format types.Format) Extractor {
	return extractors[format]
}
