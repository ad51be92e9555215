// Package config loads settings for the labmeta command.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
	"github.com/spf13/viper"

	"github.com/simonhull/labmeta"
)

// EnvPrefix prefixes environment overrides, e.g. LABMETA_EXTRACT_HEADER_SIZE.
const EnvPrefix = "LABMETA"

// Config holds all command configuration.
type Config struct {
	Extract ExtractConfig `mapstructure:"extract"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Log     LogConfig     `mapstructure:"log"`
}

type ExtractConfig struct {
	HeaderSize           int     `mapstructure:"header_size"`
	Aggregation          string  `mapstructure:"aggregation"`
	DefaultTimeIncrement float64 `mapstructure:"default_time_increment"`
}

type ScanConfig struct {
	// Include holds glob patterns matched against base names. Empty
	// selects every routable file.
	Include []string `mapstructure:"include"`
	Workers int      `mapstructure:"workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"extract.header_size":            64,
	"extract.aggregation":            "last",
	"extract.default_time_increment": 4e-10,
	"scan.include":                   []string{},
	"scan.workers":                   0,
	"log.level":                      "warn",
	"log.format":                     "text",
}

// Load reads configuration from an optional file and the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	return &cfg, nil
}

// Validate checks configuration for issues and returns warnings. Options
// falls back to defaults for every field reported here.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Extract.HeaderSize <= 0 {
		warnings = append(warnings, fmt.Sprintf("extract.header_size %d is not positive", c.Extract.HeaderSize))
	}
	if _, ok := labmeta.ParseAggregation(c.Extract.Aggregation); !ok {
		warnings = append(warnings, fmt.Sprintf("extract.aggregation %q is not one of last, consistent", c.Extract.Aggregation))
	}
	if inc := c.Extract.DefaultTimeIncrement; inc <= 0 || math.IsNaN(inc) || math.IsInf(inc, 0) {
		warnings = append(warnings, fmt.Sprintf("extract.default_time_increment %v is not a positive number", inc))
	}
	if c.Scan.Workers < 0 {
		warnings = append(warnings, fmt.Sprintf("scan.workers %d is negative", c.Scan.Workers))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		warnings = append(warnings, err.Error())
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		warnings = append(warnings, fmt.Sprintf("log.format %q is not one of text, json", f))
	}

	return warnings
}

// Options converts the extract and scan settings to labmeta options.
// Invalid values are skipped so the library defaults apply.
func (c *Config) Options(logger *slog.Logger) []labmeta.Option {
	opts := []labmeta.Option{labmeta.WithLogger(logger)}

	if c.Extract.HeaderSize > 0 {
		opts = append(opts, labmeta.WithHeaderSize(c.Extract.HeaderSize))
	}
	if agg, ok := labmeta.ParseAggregation(c.Extract.Aggregation); ok {
		opts = append(opts, labmeta.WithAggregation(agg))
	}
	if inc := c.Extract.DefaultTimeIncrement; inc > 0 && !math.IsInf(inc, 0) {
		opts = append(opts, labmeta.WithDefaultTimeIncrement(inc))
	}
	if c.Scan.Workers > 0 {
		opts = append(opts, labmeta.WithConcurrency(c.Scan.Workers))
	}
	return opts
}

// Matchers compiles the include patterns.
func (c ScanConfig) Matchers() ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(c.Include))
	for _, pattern := range c.Include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "scan.include pattern %q", pattern)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

// Logger builds a logger writing to w. Unknown levels and formats fall
// back to warn and text.
func (c LogConfig) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	hopts := &slog.HandlerOptions{Level: level}

	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, errors.Newf("log.level %q is not one of debug, info, warn, error", s)
	}
	return level, nil
}
