package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/export"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/storage"
)

var (
	indexDir string
	topLimit int
)

func init() {
	for _, c := range []*cobra.Command{indexCmd, topCmd, pairCmd, authorCmd} {
		c.Flags().StringVar(&indexDir, "dir", ".", "Run directory written by resolve")
		rootCmd.AddCommand(c)
	}
	topCmd.Flags().IntVar(&topLimit, "limit", DefaultTopLimit, "Number of pairs to list")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the query index from a run directory",
	Long: `Rebuild the SQLite query index (index.db) from the exports of a run
directory. The index is derived data: it can be deleted and rebuilt at any time.

The final author table is preferred because it carries research lines; the
preliminary table is used when it is absent.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the pairs sharing the most productions",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

var pairCmd = &cobra.Command{
	Use:   "pair <author-a> <author-b>",
	Short: "Show the collaboration strength of two authors",
	Args:  cobra.ExactArgs(2),
	RunE:  runPair,
}

var authorCmd = &cobra.Command{
	Use:   "author <idx>",
	Short: "Show one author, its merged profile and its co-authorship edges",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthor,
}

// IndexResult is the response for the index command.
type IndexResult struct {
	Status  string        `json:"status"`
	Path    string        `json:"path"`
	Authors int           `json:"authors"`
	Edges   int           `json:"edges"`
	Faults  fault.Summary `json:"faults"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	db := mustOpenIndex(indexDir)
	defer db.Close()

	report := fault.NewReport(cfg.FaultSamples)
	logger.LogFaults(report)

	stats, err := db.RebuildFromExport(indexDir, cfg.Delim(), report)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}
	logger.Info("index rebuilt", "authors", stats.Authors, "edges", stats.Edges, "faults", report.Total())

	if humanOutput {
		outputHuman("Rebuilt index with %d authors and %d co-authorship edges\n", stats.Authors, stats.Edges)
		printFaultSamplesHuman(report.Summary())
		return nil
	}
	return outputJSON(IndexResult{
		Status:  "rebuilt",
		Path:    indexDir,
		Authors: stats.Authors,
		Edges:   stats.Edges,
		Faults:  report.Summary(),
	})
}

// TopEntry is one pair of the top command.
type TopEntry struct {
	A           storage.AuthorSummary `json:"author_1"`
	B           storage.AuthorSummary `json:"author_2"`
	Count       int                   `json:"collabs_count"`
	Productions []int                 `json:"productions"`
}

func runTop(cmd *cobra.Command, args []string) error {
	mustHaveIndex(indexDir)
	db := mustOpenIndex(indexDir)
	defer db.Close()

	collabs, err := db.TopCollaborators(topLimit)
	if err != nil {
		exitWithError(ExitError, "querying index: %v", err)
	}
	entries := make([]TopEntry, 0, len(collabs))
	for _, c := range collabs {
		entry, err := topEntry(db, c)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		entries = append(entries, entry)
	}

	if humanOutput {
		if len(entries) == 0 {
			outputHuman("No co-authorships indexed\n")
			return nil
		}
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{
				strconv.Itoa(i + 1),
				authorLabel(e.A),
				authorLabel(e.B),
				strconv.Itoa(e.Count),
			}
		}
		outputHuman("%s\n", renderTable(
			[]string{"#", "author", "co-author", "shared"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
		))
		return nil
	}
	return outputJSON(entries)
}

func topEntry(db *storage.DB, c coauthor.Collaboration) (TopEntry, error) {
	a, err := db.GetAuthor(c.A)
	if err != nil {
		return TopEntry{}, err
	}
	b, err := db.GetAuthor(c.B)
	if err != nil {
		return TopEntry{}, err
	}
	return TopEntry{A: a, B: b, Count: c.Count, Productions: c.Productions}, nil
}

func runPair(cmd *cobra.Command, args []string) error {
	a, b, err := parsePair(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	mustHaveIndex(indexDir)
	db := mustOpenIndex(indexDir)
	defer db.Close()

	strength, err := db.PairStrength(a, b)
	if err != nil {
		code := ExitError
		if errors.Is(err, storage.ErrAuthorNotFound) {
			code = ExitDataError
		}
		exitWithError(code, "%v", err)
	}

	if humanOutput {
		outputHuman("%s\n%s\n", authorLabel(strength.A), authorLabel(strength.B))
		outputHuman("  shared productions: %d\n", strength.Count)
		if len(strength.Productions) > 0 {
			outputHuman("  %s\n", joinInts(strength.Productions))
		}
		return nil
	}
	return outputJSON(strength)
}

// AuthorResult is the response for the author command.
type AuthorResult struct {
	Author  storage.AuthorSummary `json:"author"`
	Profile *author.Profile       `json:"profile,omitempty"`
	Edges   []coauthor.Edge       `json:"edges"`
}

func runAuthor(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		exitWithError(ExitError, "invalid author index %q", args[0])
	}

	mustHaveIndex(indexDir)
	db := mustOpenIndex(indexDir)
	defer db.Close()

	a, err := db.GetAuthor(id)
	if err != nil {
		code := ExitError
		if errors.Is(err, storage.ErrAuthorNotFound) {
			code = ExitDataError
		}
		exitWithError(code, "%v", err)
	}
	edges, err := db.EdgesForAuthor(id)
	if err != nil {
		exitWithError(ExitError, "querying index: %v", err)
	}
	if edges == nil {
		edges = []coauthor.Edge{}
	}
	profile, err := loadProfile(indexDir, id)
	if err != nil {
		exitWithError(ExitDataError, "reading profiles: %v", err)
	}

	if humanOutput {
		outputHuman("%s\n", authorLabel(a))
		if a.ResearchLine != "" {
			outputHuman("  research line: %s\n", a.ResearchLine)
		}
		outputHuman("  productions: %d\n", a.ProdCount)
		deg := coauthor.Degree(edges)
		outputHuman("  co-authors: %d over %d edges\n", deg[id], len(edges))
		if profile != nil {
			outputHuman("\nMerged attributes:\n")
			for _, name := range author.AttributeNames {
				if v := profile.Attributes.Get(name); !v.IsEmpty() {
					outputHuman("  %s: %s\n", name, v.String())
				}
			}
		}
		return nil
	}
	return outputJSON(AuthorResult{Author: a, Profile: profile, Edges: edges})
}

// loadProfile returns the resolved profile from the run's profiles.jsonl, or
// nil when the snapshot is missing or does not hold the author.
func loadProfile(dir string, id int) (*author.Profile, error) {
	table, err := storage.LoadTable(filepath.Join(dir, export.ProfilesFile))
	if err != nil {
		return nil, err
	}
	p, ok := table.Get(id)
	if !ok {
		return nil, nil
	}
	return p, nil
}

func parsePair(args []string) (int, int, error) {
	a, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid author index %q", args[0])
	}
	b, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid author index %q", args[1])
	}
	if a == b {
		return 0, 0, coauthor.ErrSelfEdge
	}
	return a, b, nil
}

func authorLabel(a storage.AuthorSummary) string {
	label := fmt.Sprintf("[%d] %s", a.ID, a.Name)
	if a.Institution != "" {
		label += " (" + a.Institution + ")"
	}
	return label
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
