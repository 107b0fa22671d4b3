// Command phasher (legacy entrypoint) computes perceptual hashes for a list
// of image paths with a minimal flag surface. The cobra CLI under
// cmd/phasher is the full-featured interface.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"phasher/pkg/cache"
	"phasher/pkg/config"
	"phasher/pkg/logger"
	"phasher/pkg/pathlist"
	"phasher/pkg/phash"
	"phasher/pkg/pipeline"
	"phasher/pkg/ui"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	input      = flag.String("input", "-", "File listing one image path per line, or - for stdin")
	output     = flag.String("output", "", "Checkpoint/output file (required)")
	workers    = flag.Int("workers", 0, "Number of parallel hash workers (0 = one per logical core)")
	quiet      = flag.Bool("quiet", false, "Suppress all output except errors")
)

func main() {
	flag.Parse()

	if *quiet {
		ui.SetQuietMode(true)
	}

	// Build command line flags map
	flags := make(map[string]interface{})
	if *input != "" {
		flags["input"] = *input
	}
	if *output != "" {
		flags["output"] = *output
	}
	if *workers > 0 {
		flags["workers"] = *workers
	}
	if *quiet {
		flags["quiet"] = true
		flags["log-level"] = "error"
	}

	// Load configuration
	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Invalid configuration", err.Error())
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("output", cfg.Output).Info("Perceptual hasher starting")

	fs := afero.NewOsFs()

	// Read the candidate list; failure to open the source is fatal
	candidates, err := pathlist.ReadSource(fs, cfg.Input)
	if err != nil {
		ui.PrintError("Failed to read input list", err.Error())
		os.Exit(1)
	}

	// Open the checkpoint, recovering any entries from a previous run
	store, err := cache.Open(fs, cfg.Output, log)
	if err != nil {
		ui.PrintError("Failed to open output file", err.Error())
		os.Exit(1)
	}
	defer store.Close()

	engine := phash.NewEngine(fs)

	stats, err := pipeline.New(store, engine, cfg, log).Run(candidates)
	if err != nil {
		ui.PrintError("Run failed", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Hashed %d images (%d cached, %d failed) in %s",
		stats.Hashed, stats.Cached, stats.Failed, stats.Duration.Round(time.Millisecond)))
}
