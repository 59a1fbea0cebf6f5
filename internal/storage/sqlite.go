package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/export"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/importer"
	"github.com/capesgraph/authormerge/internal/pipeline"
)

// IndexFile is the query index inside a run directory. It is derived from the
// exports and can be deleted and rebuilt at any time.
const IndexFile = "index.db"

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS authors (
			idx INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			abnt_name TEXT,
			author_type TEXT,
			institution TEXT,
			program TEXT,
			research_line TEXT,
			prod_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS author_productions (
			author_idx INTEGER NOT NULL,
			prod_id INTEGER NOT NULL,
			PRIMARY KEY (author_idx, prod_id)
		);

		-- One row per edge, so a pair appears once per shared production.
		CREATE TABLE IF NOT EXISTS coauthorships (
			author_1 INTEGER NOT NULL,
			author_2 INTEGER NOT NULL,
			prod_id INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_coauthorships_a1 ON coauthorships(author_1);
		CREATE INDEX IF NOT EXISTS idx_coauthorships_a2 ON coauthorships(author_2);
		CREATE INDEX IF NOT EXISTS idx_author_productions_prod ON author_productions(prod_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and loads rows and edges in one transaction.
func (d *DB) Rebuild(rows []pipeline.Row, edges []coauthor.Edge) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"authors", "author_productions", "coauthorships"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	authorStmt, err := tx.Prepare(`
		INSERT INTO authors (idx, name, abnt_name, author_type, institution, program, research_line, prod_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing author insert: %w", err)
	}
	defer authorStmt.Close()

	prodStmt, err := tx.Prepare(`INSERT OR IGNORE INTO author_productions (author_idx, prod_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing production insert: %w", err)
	}
	defer prodStmt.Close()

	for _, r := range rows {
		c := r.Columns
		_, err := authorStmt.Exec(r.ID, r.Name(), c[author.ABNTName], c[author.Type], c[author.Institution], c[author.ProgramName], r.ResearchLine, r.ProdCount())
		if err != nil {
			return fmt.Errorf("inserting author %d: %w", r.ID, err)
		}
		for _, p := range r.ProductionIDs {
			if _, err := prodStmt.Exec(r.ID, p); err != nil {
				return fmt.Errorf("inserting production %d of author %d: %w", p, r.ID, err)
			}
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT INTO coauthorships (author_1, author_2, prod_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing coauthorship insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, e := range edges {
		if _, err := edgeStmt.Exec(e.AuthorA, e.AuthorB, e.ProductionID); err != nil {
			return fmt.Errorf("inserting edge %d-%d: %w", e.AuthorA, e.AuthorB, err)
		}
	}

	return tx.Commit()
}

// RebuildStats counts what a rebuild loaded.
type RebuildStats struct {
	Authors int `json:"authors"`
	Edges   int `json:"edges"`
}

// Export is a run directory loaded back into memory.
type Export struct {
	Rows  []pipeline.Row
	Edges []coauthor.Edge
}

// LoadExport reads the formatted author table and the co-authorship export of
// a run directory. The final export is preferred for authors since it carries
// research lines; the preliminary table is used when it is absent.
func LoadExport(dir string, delim rune, report *fault.Report) (*Export, error) {
	rows, err := readExportedAuthors(dir, delim, report)
	if err != nil {
		return nil, err
	}
	edges, err := importer.ReadCoauthorshipsFile(filepath.Join(dir, export.CoauthorshipsFile), delim, report)
	if err != nil {
		return nil, fmt.Errorf("reading co-authorships: %w", err)
	}
	return &Export{Rows: rows, Edges: edges}, nil
}

// RebuildFromExport replaces the index contents with a run directory.
func (d *DB) RebuildFromExport(dir string, delim rune, report *fault.Report) (RebuildStats, error) {
	ex, err := LoadExport(dir, delim, report)
	if err != nil {
		return RebuildStats{}, err
	}
	if err := d.Rebuild(ex.Rows, ex.Edges); err != nil {
		return RebuildStats{}, err
	}
	return RebuildStats{Authors: len(ex.Rows), Edges: len(ex.Edges)}, nil
}

// readExportedAuthors folds the exploded final export back to one row per
// author, or falls back to the preliminary table.
func readExportedAuthors(dir string, delim rune, report *fault.Report) ([]pipeline.Row, error) {
	finalPath := filepath.Join(dir, export.FinalAuthorsFile)
	recs, err := readTableIfExists(finalPath, delim)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		rows, err := importer.ReadAuthorTableFile(filepath.Join(dir, export.PreliminaryFile), delim, nil, report)
		if err != nil {
			return nil, fmt.Errorf("reading authors: %w", err)
		}
		return rows, nil
	}

	var rows []pipeline.Row
	byID := make(map[int]int)
	for _, rec := range recs {
		record := fmt.Sprintf("row %d", rec.Line)
		id, err := strconv.Atoi(strings.TrimSpace(rec.Get(pipeline.IndexColumn)))
		if err != nil {
			report.Add(fault.New(fault.MalformedField, record, pipeline.IndexColumn, "%v", err))
			continue
		}
		prod, err := strconv.Atoi(strings.TrimSpace(rec.Get(author.ProductionID)))
		if err != nil {
			report.Add(fault.New(fault.MalformedField, record, author.ProductionID, "%v", err))
			continue
		}
		i, ok := byID[id]
		if !ok {
			cols := make(map[string]string, len(pipeline.FormattedColumns))
			for _, c := range pipeline.FormattedColumns {
				cols[c] = rec.Get(c)
			}
			i = len(rows)
			byID[id] = i
			rows = append(rows, pipeline.Row{ID: id, Columns: cols, ResearchLine: rec.Get(author.ResearchLine)})
		}
		rows[i].ProductionIDs = append(rows[i].ProductionIDs, prod)
	}
	return rows, nil
}

func readTableIfExists(path string, delim rune) ([]importer.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	_, recs, err := importer.ReadTable(f, delim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if recs == nil {
		recs = []importer.Record{}
	}
	return recs, nil
}

// CountAuthors returns the number of indexed authors.
func (d *DB) CountAuthors() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM authors").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting authors: %w", err)
	}
	return n, nil
}

// CountEdges returns the number of indexed edges.
func (d *DB) CountEdges() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM coauthorships").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting edges: %w", err)
	}
	return n, nil
}
