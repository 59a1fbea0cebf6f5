package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/capesgraph/authormerge/internal/coauthor"
)

// ErrAuthorNotFound is returned when an author index is not in the index.
var ErrAuthorNotFound = errors.New("author not found")

// AuthorSummary is the indexed view of one author.
type AuthorSummary struct {
	ID           int    `json:"idx"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Institution  string `json:"institution"`
	ResearchLine string `json:"research_line,omitempty"`
	ProdCount    int    `json:"prod_count"`
}

// PairStrength is the collaboration between two named authors.
type PairStrength struct {
	A           AuthorSummary `json:"author_1"`
	B           AuthorSummary `json:"author_2"`
	Count       int           `json:"collabs_count"`
	Productions []int         `json:"productions"`
}

// GetAuthor returns one indexed author.
func (d *DB) GetAuthor(id int) (AuthorSummary, error) {
	var a AuthorSummary
	var typ, inst, line sql.NullString
	err := d.db.QueryRow(`
		SELECT idx, name, author_type, institution, research_line, prod_count
		FROM authors WHERE idx = ?
	`, id).Scan(&a.ID, &a.Name, &typ, &inst, &line, &a.ProdCount)
	if errors.Is(err, sql.ErrNoRows) {
		return AuthorSummary{}, fmt.Errorf("%w: %d", ErrAuthorNotFound, id)
	}
	if err != nil {
		return AuthorSummary{}, fmt.Errorf("querying author %d: %w", id, err)
	}
	a.Type, a.Institution, a.ResearchLine = typ.String, inst.String, line.String
	return a, nil
}

// TopCollaborators returns the pairs with the most shared productions, most
// first. Equal counts are ordered by pair.
func (d *DB) TopCollaborators(limit int) ([]coauthor.Collaboration, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.Query(`
		SELECT author_1, author_2, COUNT(*) AS n
		FROM coauthorships
		GROUP BY author_1, author_2
		ORDER BY n DESC, author_1, author_2
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top collaborators: %w", err)
	}
	defer rows.Close()

	var out []coauthor.Collaboration
	for rows.Next() {
		var c coauthor.Collaboration
		if err := rows.Scan(&c.A, &c.B, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		prods, err := d.sharedProductions(out[i].A, out[i].B)
		if err != nil {
			return nil, err
		}
		out[i].Productions = prods
	}
	return out, nil
}

// EdgesForAuthor returns every edge touching the author, ordered by production.
func (d *DB) EdgesForAuthor(id int) ([]coauthor.Edge, error) {
	rows, err := d.db.Query(`
		SELECT author_1, author_2, prod_id
		FROM coauthorships
		WHERE author_1 = ? OR author_2 = ?
		ORDER BY prod_id, author_1, author_2
	`, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying edges of author %d: %w", id, err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// PairStrength returns how many productions a and b share.
func (d *DB) PairStrength(a, b int) (PairStrength, error) {
	p := coauthor.NewPair(a, b)
	first, err := d.GetAuthor(p.A)
	if err != nil {
		return PairStrength{}, err
	}
	second, err := d.GetAuthor(p.B)
	if err != nil {
		return PairStrength{}, err
	}
	prods, err := d.sharedProductions(p.A, p.B)
	if err != nil {
		return PairStrength{}, err
	}
	return PairStrength{A: first, B: second, Count: len(prods), Productions: prods}, nil
}

func (d *DB) sharedProductions(a, b int) ([]int, error) {
	rows, err := d.db.Query(`
		SELECT prod_id FROM coauthorships
		WHERE author_1 = ? AND author_2 = ?
		ORDER BY prod_id
	`, a, b)
	if err != nil {
		return nil, fmt.Errorf("querying pair %d-%d: %w", a, b, err)
	}
	defer rows.Close()

	prods := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		prods = append(prods, id)
	}
	return prods, rows.Err()
}

// scanEdges scans rows into a slice of edges.
func scanEdges(rows *sql.Rows) ([]coauthor.Edge, error) {
	var edges []coauthor.Edge
	for rows.Next() {
		var e coauthor.Edge
		if err := rows.Scan(&e.AuthorA, &e.AuthorB, &e.ProductionID); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
