package main

import (
	"github.com/spf13/cobra"

	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/graphsync"
	"github.com/capesgraph/authormerge/internal/storage"
)

var syncDir string

func init() {
	syncCmd.Flags().StringVar(&syncDir, "dir", ".", "Run directory written by resolve")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish the co-authorship graph to Neo4j",
	Long: `Upsert (:Author) nodes and [:COLLABORATES_WITH] relationships from the
exports of a run directory into Neo4j, in one write transaction. Authors left
over from earlier syncs are removed.

Connection settings come from the environment or a .env file:
  NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD, NEO4J_DATABASE`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

// SyncResult is the response for the sync command.
type SyncResult struct {
	Status  string        `json:"status"`
	Authors int           `json:"authors"`
	Links   int           `json:"links"`
	Faults  fault.Summary `json:"faults"`
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := graphsync.NewFromEnv(ctx, logger)
	if err != nil {
		exitWithError(ExitError, "connecting to neo4j: %v", err)
	}
	if client == nil {
		exitWithError(ExitConfigError, "NEO4J_URI not set\n\nSet NEO4J_URI (and NEO4J_USER, NEO4J_PASSWORD) in the environment or a .env file.")
	}
	defer client.Close(ctx)

	report := fault.NewReport(cfg.FaultSamples)
	logger.LogFaults(report)
	ex, err := storage.LoadExport(syncDir, cfg.Delim(), report)
	if err != nil {
		exitWithError(ExitDataError, "loading exports: %v", err)
	}

	stats, err := client.Sync(ctx, ex.Rows, coauthor.Collaborations(ex.Edges))
	if err != nil {
		exitWithError(ExitError, "syncing graph: %v", err)
	}

	if humanOutput {
		outputHuman("Synced %d authors and %d collaboration links to Neo4j\n", stats.Authors, stats.Links)
		printFaultSamplesHuman(report.Summary())
		return nil
	}
	return outputJSON(SyncResult{
		Status:  "synced",
		Authors: stats.Authors,
		Links:   stats.Links,
		Faults:  report.Summary(),
	})
}
