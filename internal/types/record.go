package types

import (
	"time"
)

// Kind identifies the shape of a Record.
type Kind int

const (
	// KindBinaryHeader is produced for .bin files.
	KindBinaryHeader Kind = iota + 1
	// KindConfig is produced for .ini files.
	KindConfig
	// KindScript is produced for .m files.
	KindScript
	// KindStructuredData is produced for .mat files.
	KindStructuredData
	// KindWaveform is produced for .tdms files.
	KindWaveform
)

func (k Kind) String() string {
	switch k {
	case KindBinaryHeader:
		return "binary_header"
	case KindConfig:
		return "config"
	case KindScript:
		return "script"
	case KindStructuredData:
		return "structured_data"
	case KindWaveform:
		return "waveform"
	default:
		return "unknown"
	}
}

// Record is the result of one extraction.
//
// The set of implementations is closed; switch on the concrete type (or on
// Kind) to access typed fields:
//
//	switch r := rec.(type) {
//	case *types.WaveformRecord:
//		fmt.Println(r.ChannelCount)
//	case *types.ConfigRecord:
//		fmt.Println(r.Shape)
//	}
//
// Metadata builds the normalized, serializable form of the record.
type Record interface {
	Kind() Kind
	Metadata() *Metadata
	record()
}

// BinaryHeaderRecord holds the interpretations of a binary header window.
type BinaryHeaderRecord struct {
	// ASCIIText is the header with non-text bytes dropped, trimmed.
	ASCIIText string
	// Hex is the lowercase hex encoding of every byte read.
	Hex string
	// Integer is the first 4 bytes as big-endian uint32; nil if fewer were read.
	Integer *uint32
	// Float is the first 4 bytes as big-endian IEEE-754 float32; nil if fewer were read.
	Float *float32
	// BytesRead is the size of the header window actually read.
	BytesRead int
}

func (*BinaryHeaderRecord) Kind() Kind { return KindBinaryHeader }
func (*BinaryHeaderRecord) record()    {}

// Metadata returns ascii_text, hex_representation, interpreted_integer and
// interpreted_float, in that order.
func (r *BinaryHeaderRecord) Metadata() *Metadata {
	md := NewMetadata()
	md.Set("ascii_text", r.ASCIIText)
	md.Set("hex_representation", r.Hex)
	if r.Integer != nil {
		md.Set("interpreted_integer", *r.Integer)
	} else {
		md.Set("interpreted_integer", nil)
	}
	if r.Float != nil {
		md.Set("interpreted_float", float64(*r.Float))
	} else {
		md.Set("interpreted_float", nil)
	}
	return md
}

// ConfigShape tells which of the config record layouts was produced.
type ConfigShape int

const (
	// ConfigSections is the normal section → key → value layout.
	ConfigSections ConfigShape = iota
	// ConfigRawLines is the fallback for input without section headers.
	ConfigRawLines
	// ConfigEmpty marks a well-formed file with zero sections.
	ConfigEmpty
)

func (s ConfigShape) String() string {
	switch s {
	case ConfigSections:
		return "sections"
	case ConfigRawLines:
		return "raw_lines"
	case ConfigEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// KeyValue is one config entry. Values are kept verbatim.
type KeyValue struct {
	Key   string
	Value string
}

// ConfigSection is one bracketed section with its entries in file order.
type ConfigSection struct {
	Name string
	Keys []KeyValue
}

// ConfigRecord is the result of config extraction.
type ConfigRecord struct {
	Shape    ConfigShape
	Sections []ConfigSection // set for ConfigSections
	RawLines []string        // set for ConfigRawLines
}

const (
	// ConfigContentKey holds the fallback line list, or ConfigEmptyContent
	// for a file with zero sections.
	ConfigContentKey = "content"
	// ConfigEmptyContent is the empty-file marker.
	ConfigEmptyContent = "Empty or non-standard INI format"
)

func (*ConfigRecord) Kind() Kind { return KindConfig }
func (*ConfigRecord) record()    {}

func (r *ConfigRecord) Metadata() *Metadata {
	md := NewMetadata()
	switch r.Shape {
	case ConfigRawLines:
		md.Set(ConfigContentKey, stringList(r.RawLines))
	case ConfigEmpty:
		md.Set(ConfigContentKey, ConfigEmptyContent)
	default:
		for _, sec := range r.Sections {
			entries := NewMetadata()
			for _, kv := range sec.Keys {
				entries.Set(kv.Key, kv.Value)
			}
			md.Set(sec.Name, entries)
		}
	}
	return md
}

// ScriptRecord holds the lines of a script file, terminators included.
type ScriptRecord struct {
	Lines []string
}

// ScriptCommandsKey holds the line list in ScriptRecord metadata.
const ScriptCommandsKey = "commands"

func (*ScriptRecord) Kind() Kind { return KindScript }
func (*ScriptRecord) record()    {}

func (r *ScriptRecord) Metadata() *Metadata {
	md := NewMetadata()
	md.Set(ScriptCommandsKey, stringList(r.Lines))
	return md
}

// StructuredDataRecord holds the variables decoded from a data container.
type StructuredDataRecord struct {
	Variables *Metadata
}

func (*StructuredDataRecord) Kind() Kind { return KindStructuredData }
func (*StructuredDataRecord) record()    {}

// Metadata returns the variables mapping as produced by the decoder.
func (r *StructuredDataRecord) Metadata() *Metadata {
	if r.Variables == nil {
		return NewMetadata()
	}
	return r.Variables
}

// ChannelInfo describes one waveform channel.
type ChannelInfo struct {
	// Key is the sanitized channel name used in channel_properties.
	Key         string
	Group       string
	Name        string
	Properties  *Metadata
	SampleCount uint64
}

// WaveformRecord is the result of waveform extraction.
type WaveformRecord struct {
	FileProperties *Metadata
	Channels       []ChannelInfo
	ChannelCount   int
	SampleCount    *uint64
	SampleRate     *float64
	StartTime      *time.Time
	// Consistent is false when channel-level values disagreed under the
	// consistent aggregation policy. It is always true for AggregateLast.
	Consistent bool
}

func (*WaveformRecord) Kind() Kind { return KindWaveform }
func (*WaveformRecord) record()    {}

// Metadata returns file_properties, channel_properties, channel_count,
// sample_count, sample_rate and start_time.
func (r *WaveformRecord) Metadata() *Metadata {
	channels := NewMetadata()
	for _, ch := range r.Channels {
		props := NewMetadata()
		for k, v := range ch.Properties.All() {
			props.Set(k, v)
		}
		props.Set("sample_count", ch.SampleCount)
		channels.Set(ch.Key, props)
	}

	fileProps := r.FileProperties
	if fileProps == nil {
		fileProps = NewMetadata()
	}

	md := NewMetadata()
	md.Set("file_properties", fileProps)
	md.Set("channel_properties", channels)
	md.Set("channel_count", r.ChannelCount)
	if r.SampleCount != nil {
		md.Set("sample_count", *r.SampleCount)
	} else {
		md.Set("sample_count", nil)
	}
	if r.SampleRate != nil {
		md.Set("sample_rate", *r.SampleRate)
	} else {
		md.Set("sample_rate", nil)
	}
	if r.StartTime != nil {
		md.Set("start_time", FormatTimestamp(*r.StartTime))
	} else {
		md.Set("start_time", nil)
	}
	return md
}

// FormatTimestamp renders t as ISO-8601 text in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func stringList(lines []string) []any {
	out := make([]any, len(lines))
	for i, l := range lines {
		out[i] = l
	}
	return out
}
