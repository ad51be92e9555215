package types

import (
	"io"
	"log/slog"
	"time"
)

// DefaultHeaderSize is the binary header window in bytes.
const DefaultHeaderSize = 64

// DefaultTimeIncrement is the time increment, in seconds, assumed for a
// channel that stores none: 0.4 ns, a 2.5 GS/s digitizer clock.
const DefaultTimeIncrement = 4e-10

// Aggregation selects how top-level waveform fields are derived from
// channels.
type Aggregation int

const (
	// AggregateLast takes channel_count from the last group and every other
	// top-level field from the last channel visited.
	AggregateLast Aggregation = iota
	// AggregateConsistent reports top-level fields only when every channel
	// agrees, and counts channels across all groups.
	AggregateConsistent
)

func (a Aggregation) String() string {
	switch a {
	case AggregateLast:
		return "last"
	case AggregateConsistent:
		return "consistent"
	default:
		return "unknown"
	}
}

// ParseAggregation maps "last" and "consistent" to their policies.
func ParseAggregation(s string) (Aggregation, bool) {
	switch s {
	case "last", "":
		return AggregateLast, true
	case "consistent":
		return AggregateConsistent, true
	default:
		return AggregateLast, false
	}
}

// StructuredDecoder decodes a serialized data container into a
// variable-name → value mapping.
type StructuredDecoder interface {
	Decode(r io.ReaderAt, size int64, path string) (*Metadata, error)
}

// WaveformContainer is an open file → group → channel hierarchy.
type WaveformContainer interface {
	Properties() *Metadata
	Groups() []WaveformGroup
	Close() error
}

// WaveformGroup is a named set of channels.
type WaveformGroup interface {
	Name() string
	Channels() []WaveformChannel
}

// WaveformChannel is a named series with a property bag.
type WaveformChannel interface {
	Name() string
	Properties() *Metadata
	SampleCount() uint64
	TimeIncrement() (float64, bool)
	StartTime() (time.Time, bool)
}

// WaveformOpener opens a waveform container for reading.
type WaveformOpener func(path string) (WaveformContainer, error)

// Options carries per-call extraction settings.
type Options struct {
	HeaderSize           int
	DefaultTimeIncrement float64
	Aggregation          Aggregation
	Logger               *slog.Logger

	// Nil selects the registered defaults (MAT Level 5, TDMS).
	StructuredDecoder StructuredDecoder
	WaveformOpener    WaveformOpener
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		HeaderSize:           DefaultHeaderSize,
		DefaultTimeIncrement: DefaultTimeIncrement,
		Aggregation:          AggregateLast,
		Logger:               slog.New(slog.DiscardHandler),
	}
}

// Log returns the configured logger, never nil.
func (o Options) Log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
