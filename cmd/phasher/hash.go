package main

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"phasher/pkg/cache"
	"phasher/pkg/config"
	"phasher/pkg/logger"
	"phasher/pkg/pathlist"
	"phasher/pkg/phash"
	"phasher/pkg/pipeline"
	"phasher/pkg/ui"
)

var (
	// Hash command flags
	inputPath  string
	outputPath string
	workers    int
	queueSize  int
)

// hashCmd represents the hash command
var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Compute perceptual hashes for a list of images",
	Long: `Compute a 64-bit perceptual hash for every image in a line-delimited list
of paths and append the results to the output file as "<path>\t<hash>".

The output file is also the checkpoint: paths already present in it are
skipped, so re-running the same command resumes where the previous run
stopped. Images that fail to read or decode are logged and skipped without
affecting the rest of the run.`,
	Example: `  # Hash every image listed in images.txt
  phasher hash --input images.txt --output hashes.tsv

  # Read the list from stdin
  find photos/ -name '*.jpg' | phasher hash -o hashes.tsv

  # Resume an interrupted run (same command, nothing special needed)
  phasher hash --input images.txt --output hashes.tsv

  # Limit parallelism
  phasher hash -i images.txt -o hashes.tsv --workers 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHash()
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)

	hashCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "file listing one image path per line, or - for stdin")
	hashCmd.Flags().StringVarP(&outputPath, "output", "o", "", "checkpoint/output file (required)")
	hashCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel hash workers (default: one per logical core)")
	hashCmd.Flags().IntVar(&queueSize, "queue-size", 0, "capacity of the result queue between workers and the writer")
	hashCmd.MarkFlagRequired("output")
}

func runHash() error {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if inputPath != "" {
		flags["input"] = inputPath
	}
	if outputPath != "" {
		flags["output"] = outputPath
	}
	if workers > 0 {
		flags["workers"] = workers
	}
	if queueSize > 0 {
		flags["queue-size"] = queueSize
	}
	if quiet {
		flags["quiet"] = true
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if quiet {
		cfg.Logging.Level = "error"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	fs := afero.NewOsFs()

	candidates, err := pathlist.ReadSource(fs, cfg.Input)
	if err != nil {
		return err
	}

	store, err := cache.Open(fs, cfg.Output, log)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := phash.NewEngine(fs)

	stats, err := pipeline.New(store, engine, cfg, log).Run(candidates)
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Hashed %d images (%d cached, %d failed) in %s",
		stats.Hashed, stats.Cached, stats.Failed, stats.Duration.Round(time.Millisecond)))

	return nil
}
