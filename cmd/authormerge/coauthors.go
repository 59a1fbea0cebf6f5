package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/capesgraph/authormerge/internal/export"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/importer"
	"github.com/capesgraph/authormerge/internal/pipeline"
	"github.com/capesgraph/authormerge/internal/production"
)

var (
	coauthorsAuthors      string
	coauthorsProductions  string
	coauthorsReplacements string
	coauthorsOut          string
	coauthorsFinal        string
)

func init() {
	coauthorsCmd.Flags().StringVar(&coauthorsAuthors, "authors", "", "Preliminary author table (IDX keyed)")
	coauthorsCmd.Flags().StringVar(&coauthorsProductions, "productions", "", "Production table, enables research lines")
	coauthorsCmd.Flags().StringVar(&coauthorsReplacements, "replacements", "", "JSON production-ID replacement table")
	coauthorsCmd.Flags().StringVar(&coauthorsOut, "out", "", "Co-authorship output file")
	coauthorsCmd.Flags().StringVar(&coauthorsFinal, "final", "", "Also write the exploded final author table here")
	coauthorsCmd.MarkFlagRequired("authors")
	coauthorsCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(coauthorsCmd)
}

var coauthorsCmd = &cobra.Command{
	Use:   "coauthors",
	Short: "Derive co-authorships from a preliminary author table",
	Long: `Post-process a saved preliminary author table: replace production IDs,
assign research lines, explode one row per production and write the
co-authorship edges (AUTHOR_1;AUTHOR_2;PROD_ID).

Examples:
  authormerge coauthors --authors run/processed_authors_preliminary.csv --out co_authorships.csv
  authormerge coauthors --authors prelim.csv --replacements repl.json \
    --productions productions.csv --final final_authors.csv --out co_authorships.csv`,
	RunE: runCoauthors,
}

// CoauthorsResult is the response for the coauthors command.
type CoauthorsResult struct {
	Status    string        `json:"status"`
	Authors   int           `json:"authors"`
	FinalRows int           `json:"final_rows"`
	Edges     int           `json:"edges"`
	Pairs     int           `json:"pairs"`
	Output    string        `json:"output"`
	Final     string        `json:"final,omitempty"`
	Faults    fault.Summary `json:"faults"`
}

func runCoauthors(cmd *cobra.Command, args []string) error {
	delim := cfg.Delim()
	opts := cfg.Options()
	opts.Logger = logger
	logger.LogFaults(opts.Report)

	rows, err := importer.ReadAuthorTableFile(coauthorsAuthors, delim, opts.Priorities, opts.Report)
	if err != nil {
		exitWithError(ExitDataError, "reading authors: %v", err)
	}
	var catalog *production.Catalog
	if coauthorsProductions != "" {
		catalog, err = importer.ReadProductionsFile(coauthorsProductions, delim, opts.Report)
		if err != nil {
			exitWithError(ExitDataError, "reading productions: %v", err)
		}
	}
	repl, err := importer.ReadReplacementsFile(coauthorsReplacements)
	if err != nil {
		exitWithError(ExitDataError, "reading replacements: %v", err)
	}

	post, err := pipeline.PostProcess(cmd.Context(), rows, catalog, repl.Flatten(opts.Report), opts)
	if err != nil {
		exitWithError(ExitError, "post-processing: %v", err)
	}

	if err := export.WriteFile(coauthorsOut, func(w io.Writer) error {
		return export.WriteCoauthorships(w, post.Edges, delim)
	}); err != nil {
		exitWithError(ExitError, "writing co-authorships: %v", err)
	}
	if coauthorsFinal != "" {
		if err := export.WriteFile(coauthorsFinal, func(w io.Writer) error {
			return export.WriteFinalAuthors(w, post.Final, delim)
		}); err != nil {
			exitWithError(ExitError, "writing final authors: %v", err)
		}
	}

	result := CoauthorsResult{
		Status:    "derived",
		Authors:   len(post.Rows),
		FinalRows: len(post.Final),
		Edges:     len(post.Edges),
		Pairs:     len(post.Collaborations),
		Output:    coauthorsOut,
		Final:     coauthorsFinal,
		Faults:    opts.Report.Summary(),
	}
	if humanOutput {
		rows := []countRow{
			{"authors", result.Authors},
			{"final rows", result.FinalRows},
			{"co-authorship edges", result.Edges},
			{"collaborating pairs", result.Pairs},
		}
		rows = append(rows, faultRows(result.Faults)...)
		outputHuman("Wrote %s\n\n%s\n", coauthorsOut, renderCounts(rows))
		printFaultSamplesHuman(result.Faults)
		return nil
	}
	return outputJSON(result)
}
