package labmeta

import (
	"github.com/simonhull/labmeta/internal/types"
)

// Format is an alias to types.Format.
// Re-exporting from internal/types to maintain public API.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown        = types.FormatUnknown
	FormatWaveform       = types.FormatWaveform
	FormatBinary         = types.FormatBinary
	FormatConfig         = types.FormatConfig
	FormatStructuredData = types.FormatStructuredData
	FormatScript         = types.FormatScript
)

// FormatForPath returns the format a path routes to, by case-sensitive
// suffix. Unroutable paths yield FormatUnknown. No I/O is performed.
func FormatForPath(path string) Format {
	return types.FormatForPath(path)
}

// Formats lists the routing table in match order.
func Formats() []Format {
	return types.Formats()
}
