package main

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/capesgraph/authormerge/internal/export"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/importer"
	"github.com/capesgraph/authormerge/internal/pipeline"
)

var (
	replaceAuthors      string
	replaceReplacements string
	replaceOut          string
)

func init() {
	replaceCmd.Flags().StringVar(&replaceAuthors, "authors", "", "Preliminary author table (IDX keyed)")
	replaceCmd.Flags().StringVar(&replaceReplacements, "replacements", "", "JSON production-ID replacement table")
	replaceCmd.Flags().StringVar(&replaceOut, "out", "", "Output author table")
	replaceCmd.MarkFlagRequired("authors")
	replaceCmd.MarkFlagRequired("replacements")
	replaceCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(replaceCmd)
}

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace retired production IDs in an author table",
	Long: `Map every production ID of a preliminary author table through the
replacement table produced by production deduplication. Chains are collapsed
first; cyclic entries are dropped and reported. PROD_COUNT is recomputed.

Example:
  authormerge replace --authors prelim.csv --replacements repl.json --out prelim_replaced.csv`,
	RunE: runReplace,
}

// ReplaceResult is the response for the replace command.
type ReplaceResult struct {
	Status       string        `json:"status"`
	Authors      int           `json:"authors"`
	Replacements int           `json:"replacements"`
	Changed      int           `json:"changed_authors"`
	Output       string        `json:"output"`
	Faults       fault.Summary `json:"faults"`
}

func runReplace(cmd *cobra.Command, args []string) error {
	delim := cfg.Delim()
	opts := cfg.Options()
	logger.LogFaults(opts.Report)

	rows, err := importer.ReadAuthorTableFile(replaceAuthors, delim, opts.Priorities, opts.Report)
	if err != nil {
		exitWithError(ExitDataError, "reading authors: %v", err)
	}
	repl, err := importer.ReadReplacementsFile(replaceReplacements)
	if err != nil {
		exitWithError(ExitDataError, "reading replacements: %v", err)
	}

	flat := repl.Flatten(opts.Report)
	replaced := pipeline.ReplaceRows(rows, flat)
	changed := 0
	for _, r := range rows {
		for _, id := range r.ProductionIDs {
			if _, ok := flat[id]; ok {
				changed++
				break
			}
		}
	}
	logger.Info("production ids replaced", "authors", len(rows), "replacements", len(flat), "changed", changed)

	if err := export.WriteFile(replaceOut, func(w io.Writer) error {
		return export.WriteAuthorTable(w, replaced, delim)
	}); err != nil {
		exitWithError(ExitError, "writing authors: %v", err)
	}

	result := ReplaceResult{
		Status:       "replaced",
		Authors:      len(replaced),
		Replacements: len(flat),
		Changed:      changed,
		Output:       replaceOut,
		Faults:       opts.Report.Summary(),
	}
	if humanOutput {
		outputHuman("Replaced production IDs of %d of %d authors (%d replacements) into %s\n",
			changed, result.Authors, result.Replacements, replaceOut)
		if pairs := flat.Sorted(); len(pairs) > 0 {
			outputHuman("%s\n", renderTable([]string{"retired", "replaced by"}, replacementRows(pairs), []columnAlignment{alignRight, alignRight}))
		}
		printFaultSamplesHuman(result.Faults)
		return nil
	}
	return outputJSON(result)
}

func replacementRows(pairs [][2]int) [][]string {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{strconv.Itoa(p[0]), strconv.Itoa(p[1])}
	}
	return rows
}
