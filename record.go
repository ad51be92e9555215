package labmeta

import (
	"github.com/simonhull/labmeta/internal/types"
)

// Record is the result of one extraction. Its concrete type is one of
// *BinaryHeaderRecord, *ConfigRecord, *ScriptRecord,
// *StructuredDataRecord or *WaveformRecord.
type Record = types.Record

// Kind identifies the shape of a Record.
type Kind = types.Kind

// Record kinds.
const (
	KindBinaryHeader   = types.KindBinaryHeader
	KindConfig         = types.KindConfig
	KindScript         = types.KindScript
	KindStructuredData = types.KindStructuredData
	KindWaveform       = types.KindWaveform
)

// Metadata is an insertion-ordered mapping; a nil value marks a field
// that is explicitly absent.
type Metadata = types.Metadata

// NewMetadata returns an empty Metadata.
func NewMetadata() *Metadata {
	return types.NewMetadata()
}

// Record variants.
type (
	BinaryHeaderRecord   = types.BinaryHeaderRecord
	ConfigRecord         = types.ConfigRecord
	ConfigSection        = types.ConfigSection
	KeyValue             = types.KeyValue
	ConfigShape          = types.ConfigShape
	ScriptRecord         = types.ScriptRecord
	StructuredDataRecord = types.StructuredDataRecord
	WaveformRecord       = types.WaveformRecord
	ChannelInfo          = types.ChannelInfo
)

// Config record shapes.
const (
	ConfigSections = types.ConfigSections
	ConfigRawLines = types.ConfigRawLines
	ConfigEmpty    = types.ConfigEmpty
)

// Ports implemented by the built-in MAT-file and TDMS readers. Supply
// other implementations with WithStructuredDecoder and WithWaveformOpener.
type (
	StructuredDecoder = types.StructuredDecoder
	WaveformContainer = types.WaveformContainer
	WaveformGroup     = types.WaveformGroup
	WaveformChannel   = types.WaveformChannel
	WaveformOpener    = types.WaveformOpener
)

// Aggregation selects how top-level waveform fields are derived.
type Aggregation = types.Aggregation

// Aggregation policies.
const (
	AggregateLast       = types.AggregateLast
	AggregateConsistent = types.AggregateConsistent
)

// ParseAggregation maps "last" and "consistent" to their policies.
func ParseAggregation(s string) (Aggregation, bool) {
	return types.ParseAggregation(s)
}
