// Package waveform builds waveform records from a file → group → channel
// container.
package waveform

import (
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/simonhull/labmeta/internal/parsing"
	"github.com/simonhull/labmeta/internal/registry"
	"github.com/simonhull/labmeta/internal/tdms"
	"github.com/simonhull/labmeta/internal/types"
)

func init() {
	registry.Register(types.FormatWaveform, registry.ExtractorFunc(func(path string, opts types.Options) (types.Record, error) {
		return Extract(path, opts)
	}))
}

// ChannelKey returns the channel_properties key for a channel: its name
// with every path separator replaced by an underscore. The group is not
// part of the key, so same-named channels in different groups collide.
func ChannelKey(channel string) string {
	return parsing.SanitizeKey(channel)
}

// Extract opens path with opts.WaveformOpener (TDMS by default) and
// summarizes it. The container is closed before Extract returns.
func Extract(path string, opts types.Options) (*types.WaveformRecord, error) {
	open := opts.WaveformOpener
	if open == nil {
		open = tdms.OpenContainer
	}

	c, err := open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open waveform container")
	}
	defer c.Close()

	return Summarize(c, path, opts)
}

// Summarize builds the record for an open container. path is used in
// error values only.
func Summarize(c types.WaveformContainer, path string, opts types.Options) (*types.WaveformRecord, error) {
	groups := c.Groups()
	if len(groups) == 0 {
		return nil, &types.EmptyContainerError{Path: path}
	}

	rec := &types.WaveformRecord{
		FileProperties: normalize(c.Properties()),
		Consistent:     true,
	}

	var (
		visited   []types.WaveformChannel
		keys      []string
		lastCount int
	)
	for _, g := range groups {
		channels := g.Channels()
		if len(channels) == 0 {
			return nil, &types.EmptyContainerError{Path: path, Group: g.Name()}
		}
		lastCount = len(channels)

		for _, ch := range channels {
			key := ChannelKey(ch.Name())
			for _, k := range keys {
				if k == key {
					opts.Log().Warn("channel key collision, later channel wins", "path", path, "key", key)
					break
				}
			}
			rec.Channels = append(rec.Channels, types.ChannelInfo{
				Key:         key,
				Group:       g.Name(),
				Name:        ch.Name(),
				Properties:  normalize(ch.Properties()),
				SampleCount: ch.SampleCount(),
			})
			visited = append(visited, ch)
			keys = append(keys, key)
		}
	}

	var err error
	switch opts.Aggregation {
	case types.AggregateConsistent:
		err = aggregateConsistent(rec, visited, keys, path, opts)
	default:
		err = aggregateLast(rec, visited[len(visited)-1], keys[len(keys)-1], lastCount, path, opts)
	}
	if err != nil {
		return nil, err
	}

	opts.Log().Debug("waveform summarized",
		"path", path,
		"groups", len(groups),
		"channels", len(visited),
		"aggregation", opts.Aggregation.String(),
		"consistent", rec.Consistent,
	)
	return rec, nil
}

// aggregateLast takes the top-level fields from the last channel visited
// and the channel count from the last group.
func aggregateLast(rec *types.WaveformRecord, last types.WaveformChannel, key string, lastCount int, path string, opts types.Options) error {
	rate, err := sampleRate(last, key, path, opts)
	if err != nil {
		return err
	}

	n := last.SampleCount()
	rec.ChannelCount = lastCount
	rec.SampleCount = &n
	rec.SampleRate = &rate
	if t, ok := last.StartTime(); ok {
		rec.StartTime = &t
	}
	return nil
}

// aggregateConsistent reports a top-level field only when every channel
// agrees on it.
func aggregateConsistent(rec *types.WaveformRecord, channels []types.WaveformChannel, keys []string, path string, opts types.Options) error {
	rec.ChannelCount = len(channels)

	first := channels[0]
	n := first.SampleCount()
	rate, err := sampleRate(first, keys[0], path, opts)
	if err != nil {
		return err
	}
	start, hasStart := first.StartTime()

	sameCount, sameRate, sameStart := true, true, true
	for i, ch := range channels[1:] {
		r, err := sampleRate(ch, keys[i+1], path, opts)
		if err != nil {
			return err
		}
		t, ok := ch.StartTime()

		sameCount = sameCount && ch.SampleCount() == n
		sameRate = sameRate && r == rate
		sameStart = sameStart && ok == hasStart && (!ok || t.Equal(start))
	}

	if sameCount {
		rec.SampleCount = &n
	}
	if sameRate {
		rec.SampleRate = &rate
	}
	if sameStart && hasStart {
		rec.StartTime = &start
	}
	rec.Consistent = sameCount && sameRate && sameStart
	return nil
}

// sampleRate returns the reciprocal of the channel's time increment,
// falling back to the configured default increment.
func sampleRate(ch types.WaveformChannel, key, path string, opts types.Options) (float64, error) {
	inc, ok := ch.TimeIncrement()
	if !ok {
		inc = opts.DefaultTimeIncrement
		if inc <= 0 {
			inc = types.DefaultTimeIncrement
		}
	}
	if inc <= 0 || math.IsNaN(inc) || math.IsInf(inc, 0) {
		return 0, &types.CorruptedFileError{
			Path:   path,
			Reason: fmt.Sprintf("channel %s has invalid time increment %v", key, inc),
		}
	}
	return 1 / inc, nil
}

// normalize copies a property bag, rendering timestamps as text.
func normalize(props *types.Metadata) *types.Metadata {
	out := types.NewMetadata()
	if props == nil {
		return out
	}
	for k, v := range props.All() {
		if t, ok := v.(time.Time); ok {
			v = types.FormatTimestamp(t)
		}
		out.Set(k, v)
	}
	return out
}
