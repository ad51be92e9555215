package labmeta

import (
	"log/slog"
	"math"
	"runtime"

	"github.com/simonhull/labmeta/internal/types"
)

// Option configures an extraction.
//
// Options use the functional options pattern:
//
//	rec, err := labmeta.Process("dump.bin",
//	    labmeta.WithHeaderSize(128),
//	    labmeta.WithLogger(logger),
//	)
type Option func(*options)

type options struct {
	extract     types.Options
	concurrency int
	progress    func(Result)
	err         error // first rejected option
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		extract:     types.DefaultOptions(),
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, o.err
	}
	return o, nil
}

func (o *options) report(r Result) {
	if o.progress != nil {
		o.progress(r)
	}
}

func (o *options) reject(option string, value any) {
	if o.err == nil {
		o.err = &InvalidOptionError{Option: option, Value: value}
	}
}

// WithHeaderSize sets the number of bytes read from binary files.
// The default is 64.
func WithHeaderSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			o.reject("header size", n)
			return
		}
		o.extract.HeaderSize = n
	}
}

// WithLogger sets the logger extractors write debug records to.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.extract.Logger = l
		}
	}
}

// WithAggregation selects how the top-level waveform fields are derived.
//
// AggregateLast (the default) takes channel_count from the last group and
// sample_count, sample_rate and start_time from the last channel.
// AggregateConsistent reports a field only when all channels agree.
func WithAggregation(a Aggregation) Option {
	return func(o *options) {
		if a != AggregateLast && a != AggregateConsistent {
			o.reject("aggregation", a)
			return
		}
		o.extract.Aggregation = a
	}
}

// WithDefaultTimeIncrement sets the increment, in seconds, assumed for
// channels without a wf_increment property. The default is 4e-10, which
// reports sample_rate 2.5e9.
func WithDefaultTimeIncrement(seconds float64) Option {
	return func(o *options) {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			o.reject("default time increment", seconds)
			return
		}
		o.extract.DefaultTimeIncrement = seconds
	}
}

// WithConcurrency limits the number of files ProcessMany and ProcessAll
// read at once. The default is runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n <= 0 {
			o.reject("concurrency", n)
			return
		}
		o.concurrency = n
	}
}

// WithStructuredDecoder replaces the MAT-file decoder used for .mat files.
func WithStructuredDecoder(d StructuredDecoder) Option {
	return func(o *options) {
		o.extract.StructuredDecoder = d
	}
}

// WithWaveformOpener replaces the TDMS reader used for .tdms files.
func WithWaveformOpener(open WaveformOpener) Option {
	return func(o *options) {
		o.extract.WaveformOpener = open
	}
}

// WithProgress registers fn to be called once per file as ProcessMany and
// ProcessAll finish it. fn is called from worker goroutines and must be
// safe for concurrent use.
func WithProgress(fn func(Result)) Option {
	return func(o *options) {
		o.progress = fn
	}
}
