// Package config handles decoder configuration loading and management.
package config

import (
	"go.uber.org/zap"

	"github.com/Faultbox/gex-unit/pkg/formats"
)

// Config holds all tool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Decode  DecodeConfig  `yaml:"decode"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// ExportConfig holds the options shared with the exporter.
type ExportConfig struct {
	IgnoreVertexColours bool `yaml:"ignore_vertex_colours"`
}

// DecodeConfig holds unit model decoding settings.
type DecodeConfig struct {
	DataStart    uint32 `yaml:"data_start"`    // Offset of the data segment in the input
	CollectDepth int    `yaml:"collect_depth"` // Deepest BSP level that starts its own mesh
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `yaml:"format"` // text or yaml
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			IgnoreVertexColours: false,
		},
		Decode: DecodeConfig{
			DataStart:    0,
			CollectDepth: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// DecodeOptions converts the config into decoder options.
func (c *Config) DecodeOptions(log *zap.Logger) formats.DecodeOptions {
	opts := formats.DefaultDecodeOptions()
	opts.DataStart = c.Decode.DataStart
	opts.CollectDepth = c.Decode.CollectDepth
	opts.IgnoreVertexColours = c.Export.IgnoreVertexColours
	opts.Logger = log
	return opts
}
