package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/production"
)

// AssignResearchLines sets each row's research line to the most common line
// across its productions. Productions absent from the catalog are skipped and
// reported; the author keeps whatever the others contribute. A nil catalog
// leaves every research line empty.
//
// Authors are processed by up to workers goroutines. Each goroutine writes
// only its own row, and faults are recorded afterwards in row order so the
// report does not depend on scheduling.
func AssignResearchLines(ctx context.Context, rows []Row, catalog *production.Catalog, workers int, report *fault.Report) ([]Row, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]Row, len(rows))
	if catalog == nil {
		for i, r := range rows {
			out[i] = r.clone()
		}
		return out, nil
	}
	results := make([]fault.Result[*attr.FreqMap], len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range rows {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := rows[i].clone()
			res := catalog.ResearchLines(fmt.Sprintf("author %d", row.ID), row.ProductionIDs)
			row.ResearchLine, _ = res.Value.Top()
			out[i] = row
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assigning research lines: %w", err)
	}

	for _, res := range results {
		fault.Take(report, res)
	}
	return out, nil
}
