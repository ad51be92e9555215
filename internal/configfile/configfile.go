// Package configfile extracts section/key/value records from INI-style
// config files.
package configfile

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-ini/ini"

	"github.com/simonhull/labmeta/internal/parsing"
	"github.com/simonhull/labmeta/internal/registry"
	"github.com/simonhull/labmeta/internal/types"
)

func init() {
	registry.Register(types.FormatConfig, registry.ExtractorFunc(func(path string, opts types.Options) (types.Record, error) {
		return Extract(path, opts)
	}))
}

// loadOptions follows the bracketed-section grammar: key names are
// case-folded, section names and values are kept as written.
var loadOptions = ini.LoadOptions{
	InsensitiveKeys:            true,
	IgnoreInlineComment:        true,
	PreserveSurroundedQuote:    true,
	AllowPythonMultilineValues: true,
	SkipUnrecognizableLines:    false,
}

// Extract reads path and parses it as config text.
func Extract(path string, opts types.Options) (*types.ConfigRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data, opts), nil
}

// Parse builds a config record from raw text. It never fails: input that
// does not follow the section grammar yields the raw-lines record.
func Parse(data []byte, opts types.Options) *types.ConfigRecord {
	log := opts.Log()
	text := string(data)

	switch parsing.ClassifyINI(text) {
	case parsing.LayoutBlank:
		return &types.ConfigRecord{Shape: types.ConfigEmpty}
	case parsing.LayoutSectionless:
		log.Debug("config has no section header, keeping raw lines")
		return rawLines(text)
	}

	cfg, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		log.Debug("config did not parse, keeping raw lines", "error", err)
		return rawLines(text)
	}

	// [DEFAULT] is not a section of its own; every section inherits its
	// keys and may override them.
	defaults := cfg.Section(ini.DefaultSection).Keys()

	var sections []types.ConfigSection
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		sections = append(sections, merge(sec.Name(), defaults, sec.Keys()))
	}

	if len(sections) == 0 {
		return &types.ConfigRecord{Shape: types.ConfigEmpty}
	}
	return &types.ConfigRecord{Shape: types.ConfigSections, Sections: sections}
}

// merge lists the default keys first, then the section's own keys. A
// section key replaces a default of the same name in place.
func merge(name string, defaults, keys []*ini.Key) types.ConfigSection {
	cs := types.ConfigSection{Name: name, Keys: make([]types.KeyValue, 0, len(defaults)+len(keys))}
	index := make(map[string]int, len(defaults)+len(keys))

	for _, list := range [][]*ini.Key{defaults, keys} {
		for _, k := range list {
			kv := types.KeyValue{Key: k.Name(), Value: k.Value()}
			if i, ok := index[kv.Key]; ok {
				cs.Keys[i] = kv
				continue
			}
			index[kv.Key] = len(cs.Keys)
			cs.Keys = append(cs.Keys, kv)
		}
	}
	return cs
}

func rawLines(text string) *types.ConfigRecord {
	return &types.ConfigRecord{Shape: types.ConfigRawLines, RawLines: parsing.Lines(text)}
}
