package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/storage"
	"github.com/capesgraph/authormerge/internal/viz"
)

var (
	vizDir          string
	vizOutput       string
	vizLayout       string
	vizMinWeight    int
	vizKeepIsolated bool
)

func init() {
	vizCmd.Flags().StringVar(&vizDir, "dir", ".", "Run directory written by resolve")
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "force", "Layout algorithm: force, circle, or grid")
	vizCmd.Flags().IntVar(&vizMinWeight, "min-weight", 1, "Hide pairs sharing fewer productions")
	vizCmd.Flags().BoolVar(&vizKeepIsolated, "keep-isolated", false, "Keep authors without co-authors")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate co-authorship graph visualization",
	Long: `Generate an interactive HTML visualization of the co-authorship graph.

Authors are nodes sized by production count and colored by author type.
Edges join co-authors and get wider with the number of shared productions.

Examples:
  # Generate HTML to stdout
  authormerge viz --dir run/ > graph.html

  # Strong collaborations only, circular layout
  authormerge viz --dir run/ --min-weight 3 --layout circle -o graph.html`,
	Args: cobra.NoArgs,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	report := fault.NewReport(cfg.FaultSamples)
	logger.LogFaults(report)

	ex, err := storage.LoadExport(vizDir, cfg.Delim(), report)
	if err != nil {
		exitWithError(ExitDataError, "loading exports: %v", err)
	}

	graph := viz.BuildGraph(ex.Rows, coauthor.Collaborations(ex.Edges), viz.GraphOptions{
		MinWeight:    vizMinWeight,
		KeepIsolated: vizKeepIsolated,
	})

	// Generate HTML (validates options internally)
	html, err := viz.GenerateHTML(graph, viz.HTMLOptions{Layout: vizLayout})
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		outputHuman("Visualization of %d authors and %d links written to %s\n", len(graph.Nodes), len(graph.Edges), vizOutput)
		return nil
	}
	return outputJSON(map[string]any{
		"output":  vizOutput,
		"authors": len(graph.Nodes),
		"links":   len(graph.Edges),
	})
}
