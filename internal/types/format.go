package types

import "strings"

// Format identifies which extractor handles a file.
type Format int

const (
	// FormatUnknown represents a path whose suffix is not routable.
	FormatUnknown Format = iota
	// FormatWaveform represents TDMS waveform containers (.tdms).
	FormatWaveform
	// FormatBinary represents raw binary dumps (.bin).
	FormatBinary
	// FormatConfig represents INI-style config files (.ini).
	FormatConfig
	// FormatStructuredData represents MATLAB data files (.mat).
	FormatStructuredData
	// FormatScript represents MATLAB scripts (.m).
	FormatScript
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatWaveform:
		return "TDMS"
	case FormatBinary:
		return "Binary"
	case FormatConfig:
		return "INI"
	case FormatStructuredData:
		return "MAT"
	case FormatScript:
		return "MATLAB script"
	default:
		return "Unknown"
	}
}

// Extension returns the routing suffix for this format.
func (f Format) Extension() string {
	switch f {
	case FormatWaveform:
		return ".tdms"
	case FormatBinary:
		return ".bin"
	case FormatConfig:
		return ".ini"
	case FormatStructuredData:
		return ".mat"
	case FormatScript:
		return ".m"
	default:
		return ""
	}
}

// Formats lists every routable format in routing-table order.
func Formats() []Format {
	return []Format{
		FormatWaveform,
		FormatBinary,
		FormatConfig,
		FormatStructuredData,
		FormatScript,
	}
}

// FormatForPath selects a format by case-sensitive suffix match.
//
// The match is purely lexical; the file is not opened. Paths that end in
// none of the routing suffixes yield FormatUnknown.
func FormatForPath(path string) Format {
	for _, f := range Formats() {
		if strings.HasSuffix(path, f.Extension()) {
			return f
		}
	}
	return FormatUnknown
}
