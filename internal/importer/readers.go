package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/literal"
	"github.com/capesgraph/authormerge/internal/pipeline"
	"github.com/capesgraph/authormerge/internal/production"
)

// ReadMentions reads the scraped (production, author) table. Rows without a
// usable production ID are skipped and reported.
func ReadMentions(r io.Reader, delim rune, report *fault.Report) ([]pipeline.Mention, error) {
	cols, records, err := ReadTable(r, delim)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := requireColumns(cols, author.ProductionID, author.Name); err != nil {
		return nil, err
	}

	mentions := make([]pipeline.Mention, 0, len(records))
	for _, rec := range records {
		if m, ok := pipeline.ParseMention(rec.Line, rec.Cells, report); ok {
			mentions = append(mentions, m)
		}
	}
	return mentions, nil
}

// ReadAuthorTable reads a formatted author table keyed by IDX. An unparseable
// production list becomes an empty list.
func ReadAuthorTable(r io.Reader, delim rune, priorities pipeline.Priorities, report *fault.Report) ([]pipeline.Row, error) {
	cols, records, err := ReadTable(r, delim)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := requireColumns(cols, pipeline.IndexColumn, author.ProductionID); err != nil {
		return nil, err
	}

	rows := make([]pipeline.Row, 0, len(records))
	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		record := fmt.Sprintf("row %d", rec.Line)
		id, err := parseInt(rec.Get(pipeline.IndexColumn))
		if err != nil {
			report.Add(fault.New(fault.MalformedField, record, pipeline.IndexColumn, "%v", err))
			continue
		}
		if seen[id] {
			report.Add(fault.New(fault.MalformedField, record, pipeline.IndexColumn, "duplicate author index %d", id))
			continue
		}
		seen[id] = true

		prods, err := literal.ParseIntList(rec.Get(author.ProductionID))
		if err != nil && !errors.Is(err, literal.ErrEmpty) {
			report.Add(fault.New(fault.ParseFault, fmt.Sprintf("author %d", id), author.ProductionID, "%v", err))
		}
		if err != nil {
			prods = nil
		}

		row := pipeline.Row{ID: id, Columns: make(map[string]string, len(pipeline.FormattedColumns)), ProductionIDs: prods}
		for _, col := range pipeline.FormattedColumns {
			cell, err := pipeline.FormatCell(col, rec.Get(col), priorities)
			if err != nil {
				report.Add(fault.New(fault.ParseFault, fmt.Sprintf("author %d", id), col, "%v", err))
			}
			row.Columns[col] = cell
		}
		row.ResearchLine = strings.TrimSpace(rec.Get(author.ResearchLine))
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadProductions reads the production table. The research-line cell must be
// a frequency-mapping literal; anything else counts as no research lines.
func ReadProductions(r io.Reader, delim rune, report *fault.Report) (*production.Catalog, error) {
	cols, records, err := ReadTable(r, delim)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return production.NewCatalog(nil), nil
	}
	if err := requireColumns(cols, author.ProductionID); err != nil {
		return nil, err
	}

	prods := make([]production.Production, 0, len(records))
	for _, rec := range records {
		id, err := parseInt(rec.Get(author.ProductionID))
		if err != nil {
			report.Add(fault.New(fault.MalformedField, fmt.Sprintf("row %d", rec.Line), author.ProductionID, "%v", err))
			continue
		}
		lines := fault.Take(report, researchLines(fmt.Sprintf("production %d", id), rec.Get(author.ResearchLine)))
		prods = append(prods, production.Production{ID: id, ResearchLines: lines})
	}
	return production.NewCatalog(prods), nil
}

// researchLines parses a production's research-line cell. An absent cell is
// an empty mapping; a bad literal or a non-mapping value is skipped.
func researchLines(record, cell string) fault.Result[*attr.FreqMap] {
	v, err := attr.ParseCell(cell)
	switch {
	case err != nil:
		return fault.Skip(attr.NewFreqMap(), fault.New(fault.ParseFault, record, author.ResearchLine, "%v", err))
	case v.Kind() == attr.KindFrequency:
		lines, _ := v.AsFrequency()
		return fault.OK(lines)
	case v.Kind() == attr.KindAbsent:
		return fault.OK(attr.NewFreqMap())
	default:
		return fault.Skip(attr.NewFreqMap(), fault.New(fault.MalformedField, record, author.ResearchLine, "expected a mapping, got %s", v.Kind()))
	}
}

// parseInt accepts integers written by tools that store IDs as floats ("12.0").
func parseInt(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// openWith opens path and hands it to read.
func openWith[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ReadMentionsFile reads the mention table at path.
func ReadMentionsFile(path string, delim rune, report *fault.Report) ([]pipeline.Mention, error) {
	return openWith(path, func(r io.Reader) ([]pipeline.Mention, error) {
		return ReadMentions(r, delim, report)
	})
}

// ReadAuthorTableFile reads the author table at path.
func ReadAuthorTableFile(path string, delim rune, priorities pipeline.Priorities, report *fault.Report) ([]pipeline.Row, error) {
	return openWith(path, func(r io.Reader) ([]pipeline.Row, error) {
		return ReadAuthorTable(r, delim, priorities, report)
	})
}

// ReadProductionsFile reads the production table at path.
func ReadProductionsFile(path string, delim rune, report *fault.Report) (*production.Catalog, error) {
	return openWith(path, func(r io.Reader) (*production.Catalog, error) {
		return ReadProductions(r, delim, report)
	})
}

// ReadCoauthorships reads a co-authorship export. Rows with non-integer cells
// are skipped and reported; pairs are reordered so AuthorA < AuthorB.
func ReadCoauthorships(r io.Reader, delim rune, report *fault.Report) ([]coauthor.Edge, error) {
	cols, records, err := ReadTable(r, delim)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := requireColumns(cols, "AUTHOR_1", "AUTHOR_2", "PROD_ID"); err != nil {
		return nil, err
	}

	edges := make([]coauthor.Edge, 0, len(records))
	for _, rec := range records {
		record := fmt.Sprintf("row %d", rec.Line)
		a, errA := parseInt(rec.Get("AUTHOR_1"))
		b, errB := parseInt(rec.Get("AUTHOR_2"))
		p, errP := parseInt(rec.Get("PROD_ID"))
		if err := errors.Join(errA, errB, errP); err != nil {
			report.Add(fault.New(fault.MalformedField, record, "", "%v", err))
			continue
		}
		pair := coauthor.NewPair(a, b)
		e := coauthor.Edge{AuthorA: pair.A, AuthorB: pair.B, ProductionID: p}
		if err := e.Validate(); err != nil {
			report.Add(fault.New(fault.MalformedField, record, "", "%v", err))
			continue
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// ReadCoauthorshipsFile reads the co-authorship export at path.
func ReadCoauthorshipsFile(path string, delim rune, report *fault.Report) ([]coauthor.Edge, error) {
	return openWith(path, func(r io.Reader) ([]coauthor.Edge, error) {
		return ReadCoauthorships(r, delim, report)
	})
}
