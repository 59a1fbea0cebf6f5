// Package export writes the author and co-authorship tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/importer"
	"github.com/capesgraph/authormerge/internal/pipeline"
)

// Output file names inside a run directory.
const (
	PreliminaryFile   = "processed_authors_preliminary.csv"
	FinalAuthorsFile  = "final_authors.csv"
	CoauthorshipsFile = "co_authorships.csv"
	ProfilesFile      = "profiles.jsonl"
)

// CoauthorshipHeader is the header row of the co-authorship export.
var CoauthorshipHeader = []string{"AUTHOR_1", "AUTHOR_2", "PROD_ID"}

// PreliminaryHeader returns the columns of the formatted author table.
func PreliminaryHeader() []string {
	h := []string{pipeline.IndexColumn}
	h = append(h, pipeline.FormattedColumns...)
	return append(h, author.ProductionID, pipeline.ProdCountColumn)
}

// FinalHeader returns the columns of the exploded author export.
func FinalHeader() []string {
	return append(PreliminaryHeader(), author.ResearchLine)
}

func newWriter(w io.Writer, delim rune) (*csv.Writer, error) {
	if _, err := importer.ParseDelimiter(string(delim)); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim
	return cw, nil
}

func rowCells(r pipeline.Row) []string {
	cells := make([]string, 0, len(pipeline.FormattedColumns)+1)
	cells = append(cells, strconv.Itoa(r.ID))
	for _, col := range pipeline.FormattedColumns {
		cells = append(cells, r.Columns[col])
	}
	return cells
}

// FormatIDList renders production IDs as a list literal, e.g. "[10, 11]".
func FormatIDList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WriteAuthorTable writes the formatted author table, one row per author with
// its production list.
func WriteAuthorTable(w io.Writer, rows []pipeline.Row, delim rune) error {
	cw, err := newWriter(w, delim)
	if err != nil {
		return err
	}
	if err := cw.Write(PreliminaryHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		cells := append(rowCells(r), FormatIDList(r.ProductionIDs), strconv.Itoa(r.ProdCount()))
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("writing author %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFinalAuthors writes one row per (author, production) pair.
func WriteFinalAuthors(w io.Writer, rows []pipeline.FinalRow, delim rune) error {
	cw, err := newWriter(w, delim)
	if err != nil {
		return err
	}
	if err := cw.Write(FinalHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		cells := append(rowCells(r.Row), strconv.Itoa(r.ProductionID), strconv.Itoa(r.ProdCount()), r.ResearchLine)
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("writing author %d production %d: %w", r.ID, r.ProductionID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCoauthorships writes one row per edge. Repeated pairs stay repeated.
func WriteCoauthorships(w io.Writer, edges []coauthor.Edge, delim rune) error {
	cw, err := newWriter(w, delim)
	if err != nil {
		return err
	}
	if err := cw.Write(CoauthorshipHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range edges {
		if err := cw.Write([]string{strconv.Itoa(e.AuthorA), strconv.Itoa(e.AuthorB), strconv.Itoa(e.ProductionID)}); err != nil {
			return fmt.Errorf("writing edge %d-%d: %w", e.AuthorA, e.AuthorB, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes through fn into path. The content goes to a temporary file
// in the same directory first, so a failed write never leaves a partial table.
func WriteFile(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}
