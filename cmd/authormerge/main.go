// Package main provides the authormerge CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/capesgraph/authormerge/internal/config"
	"github.com/capesgraph/authormerge/internal/logging"
	"github.com/capesgraph/authormerge/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	humanOutput bool
	configPath  string
	logMode     string
	quiet       bool
)

// Loaded by the root pre-run hook for every command.
var (
	cfg    *config.Config
	logger = logging.Nop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "authormerge",
	Short: "Author deduplication and co-authorship graph CLI",
	Long: `authormerge resolves scraped author mentions into canonical author profiles
and derives the co-authorship graph of their productions.

Orphan mentions (no person id) are merged into an existing profile when their
attributes agree, or become new authors. The formatted tables are written as
delimited files; an ephemeral SQLite index answers collaboration queries and
an optional Neo4j sync publishes the graph.

All commands output JSON by default for agent integration.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Run configuration file (default: ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "dev", "Log format: dev (console) or prod (JSON)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Only log errors")
	rootCmd.Version = Version
}

func setup(cmd *cobra.Command, args []string) error {
	// Optional; NEO4J_* may also come from the environment.
	_ = godotenv.Load()

	log, err := logging.New(logMode, quiet)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger = log

	loaded, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	cfg = loaded
	return nil
}

// mustOpenIndex opens the SQLite index of a run directory, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenIndex(dir string) *storage.DB {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		exitWithError(ExitConfigError, "run directory not found: %s", dir)
	}
	db, err := storage.OpenDB(filepath.Join(dir, storage.IndexFile))
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	return db
}

// mustHaveIndex exits when the run directory has not been indexed yet.
func mustHaveIndex(dir string) {
	if _, err := os.Stat(filepath.Join(dir, storage.IndexFile)); err != nil {
		exitWithError(ExitConfigError, "index not found in %s\n\nRun 'authormerge index --dir %s' to create it.", dir, dir)
	}
}
