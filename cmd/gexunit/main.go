// gexunit is a CLI utility for inspecting Gex unit models.
package main

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/gex-unit/internal/config"
	"github.com/Faultbox/gex-unit/internal/logger"
	"github.com/Faultbox/gex-unit/pkg/formats"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		return cmdInfo(cfg, args)
	case "dump":
		return cmdDump(cfg, args)
	case "init-config":
		return cmdInitConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`gexunit - Gex unit model inspector

Usage:
  gexunit [flags] <command> [arguments]

Commands:
  info <file> [model-offset]         Show header and table layout
  dump <file> [model-offset]         Decode and report meshes and materials
  init-config [path]                 Write the current settings as a config file
                                     (default: the per-user config path)

Flags:
  -config <path>                     Config file (default ./gexunit.yaml, then
                                     the per-user config path)
  -data-start <offset>               Offset of the data segment
  -depth <n>                         Deepest BSP level that starts its own mesh
  -ignore-vertex-colours             Force vertex colours to white
  -format text|yaml                  Report format
  -debug                             Enable debug logging

Examples:
  gexunit info level1.drm 0x1c0
  gexunit -format yaml dump level1.drm 0x1c0
  gexunit -depth 1 -data-start 0x800 dump level1.drm`)
}

// decodeArgs parses "<file> [model-offset]" and decodes the model.
func decodeArgs(cfg *config.Config, usage string, args []string) (*formats.UnitModel, bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return nil, false
	}

	var modelOffset uint32
	if len(args) > 1 {
		v, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid model offset %q: %v\n", args[1], err)
			return nil, false
		}
		modelOffset = uint32(v)
	}

	log := logger.Named("decoder")
	model, err := formats.ParseUnitModelFile(args[0], modelOffset, cfg.DecodeOptions(log))
	if err != nil {
		logger.Error("decode failed",
			zap.String("file", args[0]),
			zap.Uint32("model_offset", modelOffset),
			zap.Error(err),
		)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, false
	}
	if !model.Header.HasPolygons() {
		logger.Warn("model has no polygon table", zap.String("model", model.Name))
	}
	logger.Info("decoded unit model",
		zap.String("model", model.Name),
		zap.Int("meshes", len(model.Boundaries)),
		zap.Int("materials", len(model.Materials)),
	)
	return model, true
}

func cmdInfo(cfg *config.Config, args []string) int {
	model, ok := decodeArgs(cfg, "Usage: gexunit info <file> [model-offset]", args)
	if !ok {
		return 1
	}

	h := model.Header
	fmt.Printf("Model:     %s\n", model.Name)
	fmt.Printf("Data:      0x%08x\n", h.DataStart)
	fmt.Printf("Header:    0x%08x\n", h.ModelOffset)
	fmt.Println()
	fmt.Println("Tables:")
	fmt.Printf("  %-16s 0x%08x  %d\n", "vertices", h.VertexStart, h.VertexCount)
	fmt.Printf("  %-16s 0x%08x  %d\n", "polygons", h.PolygonStart, h.PolygonCount)
	fmt.Printf("  %-16s 0x%08x\n", "materials", h.MaterialStart)
	fmt.Printf("  %-16s 0x%08x\n", "spectral verts", h.SpectralVertexStart)
	fmt.Printf("  %-16s 0x%08x\n", "spectral colours", h.SpectralColourStart)
	fmt.Printf("  %-16s 0x%08x  %d\n", "bsp trees", h.BSPTreeStart, h.BSPTreeCount)
	return 0
}

func cmdDump(cfg *config.Config, args []string) int {
	model, ok := decodeArgs(cfg, "Usage: gexunit dump <file> [model-offset]", args)
	if !ok {
		return 1
	}

	if err := writeReport(os.Stdout, buildReport(model), cfg.Output.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return 1
	}
	return 0
}

func cmdInitConfig(cfg *config.Config, args []string) int {
	path := config.UserConfigPath()
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Refusing to overwrite existing %s\n", path)
		return 1
	}

	var err error
	if len(args) > 0 {
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Wrote: %s\n", path)
	return 0
}
