package graphsync

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/pipeline"
)

// BatchSize caps the rows sent in one UNWIND.
const BatchSize = 1000

const upsertAuthors = `
UNWIND $rows AS r
MERGE (a:Author {idx: r.idx})
SET a.name = r.name,
    a.institution = r.institution,
    a.type = r.type,
    a.research_line = r.research_line,
    a.prod_count = r.prod_count,
    a.synced_at = r.synced_at
`

const upsertLinks = `
UNWIND $rows AS r
MATCH (a:Author {idx: r.source})
MATCH (b:Author {idx: r.target})
MERGE (a)-[l:COLLABORATES_WITH]->(b)
SET l.collabs_count = r.collabs_count,
    l.productions = r.productions,
    l.synced_at = r.synced_at
`

const deleteStale = `
MATCH (a:Author)
WHERE a.synced_at <> $synced_at
DETACH DELETE a
`

// Stats counts what a sync wrote.
type Stats struct {
	Authors int `json:"authors"`
	Links   int `json:"links"`
}

// AuthorParams builds the node rows for the author upsert.
func AuthorParams(rows []pipeline.Row, syncedAt string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{
			"idx":           int64(r.ID),
			"name":          r.Name(),
			"institution":   r.Columns[author.Institution],
			"type":          r.Columns[author.Type],
			"research_line": r.ResearchLine,
			"prod_count":    int64(r.ProdCount()),
			"synced_at":     syncedAt,
		})
	}
	return out
}

// LinkParams builds one relationship row per collaborating pair. The edge
// multiplicity survives as collabs_count.
func LinkParams(collabs []coauthor.Collaboration, syncedAt string) []map[string]any {
	out := make([]map[string]any, 0, len(collabs))
	for _, c := range collabs {
		prods := make([]int64, len(c.Productions))
		for i, p := range c.Productions {
			prods[i] = int64(p)
		}
		out = append(out, map[string]any{
			"source":        int64(c.A),
			"target":        int64(c.B),
			"collabs_count": int64(c.Count),
			"productions":   prods,
			"synced_at":     syncedAt,
		})
	}
	return out
}

// Batches splits rows into chunks of at most size.
func Batches(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = BatchSize
	}
	var out [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

// Sync replaces the graph with rows and collabs in one write transaction.
// Authors from earlier syncs that are no longer present are removed.
// A nil client is a no-op.
func (c *Client) Sync(ctx context.Context, rows []pipeline.Row, collabs []coauthor.Collaboration) (Stats, error) {
	if c == nil || c.Driver == nil {
		return Stats{}, nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	authors := AuthorParams(rows, now)
	links := LinkParams(collabs, now)

	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
	defer session.Close(ctx)

	// Best-effort schema init.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT author_idx_unique IF NOT EXISTS FOR (a:Author) REQUIRE a.idx IS UNIQUE`, nil); err != nil {
		c.logger().Warn("neo4j schema init failed (continuing)", "error", err)
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, batch := range Batches(authors, BatchSize) {
			if err := run(ctx, tx, upsertAuthors, map[string]any{"rows": batch}); err != nil {
				return nil, fmt.Errorf("upserting authors: %w", err)
			}
		}
		for _, batch := range Batches(links, BatchSize) {
			if err := run(ctx, tx, upsertLinks, map[string]any{"rows": batch}); err != nil {
				return nil, fmt.Errorf("upserting links: %w", err)
			}
		}
		if err := run(ctx, tx, deleteStale, map[string]any{"synced_at": now}); err != nil {
			return nil, fmt.Errorf("removing stale authors: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return Stats{}, err
	}

	c.logger().Info("graph synced", "authors", len(authors), "links", len(links))
	return Stats{Authors: len(authors), Links: len(links)}, nil
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}
