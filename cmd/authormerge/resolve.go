package main

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/capesgraph/authormerge/internal/export"
	"github.com/capesgraph/authormerge/internal/importer"
	"github.com/capesgraph/authormerge/internal/pipeline"
	"github.com/capesgraph/authormerge/internal/storage"
)

var (
	resolveMentions     string
	resolveProductions  string
	resolveReplacements string
	resolveOut          string
)

func init() {
	resolveCmd.Flags().StringVar(&resolveMentions, "mentions", "", "Author mention table (one row per production and author)")
	resolveCmd.Flags().StringVar(&resolveProductions, "productions", "", "Production table with NM_LINHA_PESQUISA mappings")
	resolveCmd.Flags().StringVar(&resolveReplacements, "replacements", "", "JSON production-ID replacement table")
	resolveCmd.Flags().StringVar(&resolveOut, "out", "", "Output run directory")
	resolveCmd.MarkFlagRequired("mentions")
	resolveCmd.MarkFlagRequired("productions")
	resolveCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve author mentions and derive co-authorships",
	Long: `Run the whole pipeline over a batch of author mentions.

Mentions with a person id are grouped into canonical profiles. Orphan mentions
are merged into the best matching profile or become new authors. The formatted
author table, the exploded final table, the co-authorship edges and the
profile snapshot are written to the output directory:

  processed_authors_preliminary.csv
  final_authors.csv
  co_authorships.csv
  profiles.jsonl

Malformed rows and missing productions are skipped and counted, never fatal.

Examples:
  authormerge resolve --mentions authors.csv --productions productions.csv --out run/
  authormerge resolve --mentions authors.csv --productions productions.csv \
    --replacements prod_replacements.json --out run/ --human`,
	RunE: runResolve,
}

// ResolveResult is the response for the resolve command.
type ResolveResult struct {
	Status  string           `json:"status"`
	Dir     string           `json:"dir"`
	Files   []string         `json:"files"`
	Summary pipeline.Summary `json:"summary"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	delim := cfg.Delim()
	opts := cfg.Options()
	opts.Logger = logger
	logger.LogFaults(opts.Report)

	mentions, err := importer.ReadMentionsFile(resolveMentions, delim, opts.Report)
	if err != nil {
		exitWithError(ExitDataError, "reading mentions: %v", err)
	}
	catalog, err := importer.ReadProductionsFile(resolveProductions, delim, opts.Report)
	if err != nil {
		exitWithError(ExitDataError, "reading productions: %v", err)
	}
	repl, err := importer.ReadReplacementsFile(resolveReplacements)
	if err != nil {
		exitWithError(ExitDataError, "reading replacements: %v", err)
	}

	res, err := pipeline.Run(cmd.Context(), pipeline.Input{
		Mentions:     mentions,
		Productions:  catalog,
		Replacements: repl,
	}, opts)
	if err != nil {
		exitWithError(ExitError, "resolving authors: %v", err)
	}

	files := []string{
		filepath.Join(resolveOut, export.PreliminaryFile),
		filepath.Join(resolveOut, export.FinalAuthorsFile),
		filepath.Join(resolveOut, export.CoauthorshipsFile),
		filepath.Join(resolveOut, export.ProfilesFile),
	}
	writers := []func(io.Writer) error{
		func(w io.Writer) error { return export.WriteAuthorTable(w, res.Preliminary, delim) },
		func(w io.Writer) error { return export.WriteFinalAuthors(w, res.Post.Final, delim) },
		func(w io.Writer) error { return export.WriteCoauthorships(w, res.Post.Edges, delim) },
	}
	for i, write := range writers {
		if err := export.WriteFile(files[i], write); err != nil {
			exitWithError(ExitError, "writing %s: %v", filepath.Base(files[i]), err)
		}
	}
	if err := storage.WriteProfiles(files[3], res.Table); err != nil {
		exitWithError(ExitError, "writing profiles: %v", err)
	}

	if humanOutput {
		printResolveHuman(resolveOut, res.Summary)
		return nil
	}
	return outputJSON(ResolveResult{
		Status:  "resolved",
		Dir:     resolveOut,
		Files:   files,
		Summary: res.Summary,
	})
}

func printResolveHuman(dir string, s pipeline.Summary) {
	rows := []countRow{
		{"mentions", s.Mentions},
		{"known profiles", s.Known},
		{"orphans", s.Resolution.Orphans},
		{"orphans merged", s.Resolution.Merged},
		{"orphans as new authors", s.Resolution.Created},
		{"score ties", s.Resolution.Ties},
		{"authors", s.Authors},
		{"final rows", s.FinalRows},
		{"co-authorship edges", s.Edges},
		{"collaborating pairs", s.Pairs},
		{"production replacements", s.Replacements},
	}
	rows = append(rows, faultRows(s.Faults)...)
	outputHuman("Resolved authors into %s\n\n%s\n", dir, renderCounts(rows))
	printFaultSamplesHuman(s.Faults)
}
