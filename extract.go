package labmeta

import (
	"github.com/simonhull/labmeta/internal/configfile"
	"github.com/simonhull/labmeta/internal/header"
	"github.com/simonhull/labmeta/internal/script"
	"github.com/simonhull/labmeta/internal/structured"
	"github.com/simonhull/labmeta/internal/waveform"
)

// The extractors below bypass suffix routing and read path as the named
// format regardless of its extension.

// ExtractBinaryHeader reads the leading header window of a binary file.
func ExtractBinaryHeader(path string, opts ...Option) (*BinaryHeaderRecord, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return header.Extract(path, o.extract)
}

// ExtractConfig parses an INI-style config file.
func ExtractConfig(path string, opts ...Option) (*ConfigRecord, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return configfile.Extract(path, o.extract)
}

// ExtractScript returns the lines of a script file.
func ExtractScript(path string, opts ...Option) (*ScriptRecord, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return script.Extract(path, o.extract)
}

// ExtractStructuredData decodes the variables of a MAT-file, or of any
// container the WithStructuredDecoder decoder understands.
func ExtractStructuredData(path string, opts ...Option) (*StructuredDataRecord, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return structured.Extract(path, o.extract)
}

// ExtractWaveform summarizes a TDMS file, or any container the
// WithWaveformOpener opener understands.
func ExtractWaveform(path string, opts ...Option) (*WaveformRecord, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return waveform.Extract(path, o.extract)
}
