package config

import (
	"flag"
	"fmt"
)

const maxDataStart = 0xFFFFFFFF

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagIgnoreColour = flag.Bool("ignore-vertex-colours", false, "Force vertex colours to white")
	flagDepth        = flag.Int("depth", -1, "Deepest BSP level that starts its own mesh")
	flagDataStart    = flag.Int64("data-start", -1, "Offset of the data segment")
	flagFormat       = flag.String("format", "", "Report format: text or yaml")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. Numeric flags left
// at -1 keep the file or default value.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagIgnoreColour {
		cfg.Export.IgnoreVertexColours = true
	}
	if *flagDepth >= 0 {
		cfg.Decode.CollectDepth = *flagDepth
	}
	if *flagDataStart >= 0 {
		if *flagDataStart > maxDataStart {
			return fmt.Errorf("-data-start 0x%x does not fit in 32 bits", *flagDataStart)
		}
		cfg.Decode.DataStart = uint32(*flagDataStart)
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	return nil
}
