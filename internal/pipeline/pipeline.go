// Package pipeline chains the resolution stages. Every stage takes a snapshot
// and returns a new one; nothing is rewritten in place.
//
//	mentions ─ replace IDs ─ build profiles ─ resolve orphans ─ format
//	        ─ replace IDs ─ research lines ─ explode / derive co-authorships
package pipeline

import (
	"context"
	"time"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/logging"
	"github.com/capesgraph/authormerge/internal/production"
	"github.com/capesgraph/authormerge/internal/resolve"
)

// Options configures a run.
type Options struct {
	MinScore   int
	Schema     author.Schema
	Priorities Priorities
	Workers    int
	Report     *fault.Report
	Logger     *logging.Logger
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		MinScore:   resolve.DefaultMinScore,
		Schema:     author.DefaultSchema(),
		Priorities: DefaultPriorities(),
		Workers:    1,
		Report:     fault.NewReport(fault.DefaultSampleLimit),
	}
}

func (o Options) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Input is the static batch a run consumes.
type Input struct {
	Mentions     []Mention
	Productions  *production.Catalog
	Replacements production.Replacements
}

// Summary describes a run.
type Summary struct {
	Mentions     int             `json:"mentions"`
	Known        int             `json:"known_profiles"`
	Resolution   resolve.Summary `json:"resolution"`
	Authors      int             `json:"authors"`
	FinalRows    int             `json:"final_rows"`
	Edges        int             `json:"edges"`
	Pairs        int             `json:"pairs"`
	Replacements int             `json:"replacements"`
	Faults       fault.Summary   `json:"faults"`
}

// Result holds every artifact of a run.
type Result struct {
	Table       *author.Table
	Decisions   []resolve.Decision
	Preliminary []Row
	Post        *PostResult
	Summary     Summary
}

// Run resolves the batch end to end. Production IDs are replaced before any
// matching, so profiles and edges only ever see surviving IDs.
func Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	log := opts.logger()
	report := opts.Report
	start := time.Now()

	repl := in.Replacements.Flatten(report)
	mentions := ReplaceMentions(in.Mentions, repl)

	base, orphans := BuildProfiles(mentions, opts.Schema, report)
	log.Info("profiles built", "mentions", len(mentions), "known", base.Len(), "orphans", len(orphans))

	table, decisions, rs := resolve.Resolve(base, orphans, resolve.Options{
		MinScore: opts.MinScore,
		Schema:   opts.Schema,
		Report:   report,
	})
	log.Info("orphans resolved", "merged", rs.Merged, "created", rs.Created, "ties", rs.Ties, "authors", table.Len())

	prelim := Format(table, opts.Priorities)

	post, err := PostProcess(ctx, prelim, in.Productions, repl, opts)
	if err != nil {
		return nil, err
	}

	sum := Summary{
		Mentions:     len(mentions),
		Known:        base.Len(),
		Resolution:   rs,
		Authors:      table.Len(),
		FinalRows:    len(post.Final),
		Edges:        len(post.Edges),
		Pairs:        len(post.Collaborations),
		Replacements: len(repl),
		Faults:       report.Summary(),
	}
	for _, reason := range report.Reasons() {
		log.Info("skipped contributions", "reason", string(reason), "count", report.Count(reason))
	}
	log.Info("run complete", "authors", sum.Authors, "edges", sum.Edges, "faults", sum.Faults.Total, "elapsed", time.Since(start).String())

	return &Result{
		Table:       table,
		Decisions:   decisions,
		Preliminary: prelim,
		Post:        post,
		Summary:     sum,
	}, nil
}

// PostResult holds the outputs derived from a formatted author table.
type PostResult struct {
	Rows           []Row
	Final          []FinalRow
	Edges          []coauthor.Edge
	Collaborations []coauthor.Collaboration
}

// PostProcess replaces production IDs, assigns research lines, explodes the
// table and derives co-authorships. repl should already be flattened. It is
// the whole run when starting from a saved preliminary table.
func PostProcess(ctx context.Context, rows []Row, catalog *production.Catalog, repl production.Replacements, opts Options) (*PostResult, error) {
	log := opts.logger()

	rows = ReplaceRows(rows, repl)
	rows, err := AssignResearchLines(ctx, rows, catalog, opts.Workers, opts.Report)
	if err != nil {
		return nil, err
	}
	log.Info("research lines assigned", "authors", len(rows), "productions", catalog.Len(), "workers", opts.Workers)

	final := Explode(rows)
	edges := coauthor.Derive(Assignment(rows))
	collabs := coauthor.Collaborations(edges)
	log.Info("co-authorships derived", "rows", len(final), "edges", len(edges), "pairs", len(collabs))

	return &PostResult{Rows: rows, Final: final, Edges: edges, Collaborations: collabs}, nil
}
