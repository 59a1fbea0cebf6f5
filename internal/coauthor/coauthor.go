// Package coauthor derives co-authorship edges from the author→production assignment.
package coauthor

import (
	"errors"
	"sort"
)

// Edge links two authors through one shared production. AuthorA < AuthorB.
// A pair sharing several productions has one edge per production.
type Edge struct {
	AuthorA      int `json:"author_1"`
	AuthorB      int `json:"author_2"`
	ProductionID int `json:"prod_id"`
}

// Validation errors.
var (
	ErrSelfEdge  = errors.New("author_1 and author_2 cannot be the same")
	ErrUnordered = errors.New("author_1 must be lower than author_2")
)

// Validate checks the ordering invariant.
func (e Edge) Validate() error {
	if e.AuthorA == e.AuthorB {
		return ErrSelfEdge
	}
	if e.AuthorA > e.AuthorB {
		return ErrUnordered
	}
	return nil
}

// Pair returns the unordered author pair of the edge.
func (e Edge) Pair() Pair {
	return Pair{A: e.AuthorA, B: e.AuthorB}
}

// Pair is an unordered author pair stored with A < B.
type Pair struct {
	A int `json:"author_1"`
	B int `json:"author_2"`
}

// NewPair orders a and b.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// PairCount returns C(k,2), the number of edges a production with k authors yields.
func PairCount(k int) int {
	if k < 2 {
		return 0
	}
	return k * (k - 1) / 2
}

// AuthorsByProduction inverts author → productions into production → sorted authors.
// An author listing a production twice still appears once.
func AuthorsByProduction(assignment map[int][]int) map[int][]int {
	sets := make(map[int]map[int]bool)
	for authorID, prods := range assignment {
		for _, prod := range prods {
			s := sets[prod]
			if s == nil {
				s = make(map[int]bool)
				sets[prod] = s
			}
			s[authorID] = true
		}
	}
	out := make(map[int][]int, len(sets))
	for prod, s := range sets {
		ids := make([]int, 0, len(s))
		for id := range s {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		out[prod] = ids
	}
	return out
}

// Derive emits one edge per unordered pair of distinct authors on each
// production. Output is ordered by production, then pair. Time is quadratic
// in the number of authors on a production; there is no cap on that number.
func Derive(assignment map[int][]int) []Edge {
	byProd := AuthorsByProduction(assignment)
	prods := make([]int, 0, len(byProd))
	total := 0
	for prod, authors := range byProd {
		prods = append(prods, prod)
		total += PairCount(len(authors))
	}
	sort.Ints(prods)

	edges := make([]Edge, 0, total)
	for _, prod := range prods {
		authors := byProd[prod]
		for i := 0; i < len(authors); i++ {
			for j := i + 1; j < len(authors); j++ {
				edges = append(edges, Edge{AuthorA: authors[i], AuthorB: authors[j], ProductionID: prod})
			}
		}
	}
	return edges
}

// Collaboration summarizes all edges between one pair.
type Collaboration struct {
	Pair
	Count       int   `json:"collabs_count"`
	Productions []int `json:"productions"`
}

// Collaborations folds the edge multiset into one entry per pair, ordered by
// pair. The edges themselves are left as they are.
func Collaborations(edges []Edge) []Collaboration {
	idx := make(map[Pair]int)
	var out []Collaboration
	for _, e := range edges {
		p := NewPair(e.AuthorA, e.AuthorB)
		i, ok := idx[p]
		if !ok {
			i = len(out)
			idx[p] = i
			out = append(out, Collaboration{Pair: p})
		}
		out[i].Count++
		out[i].Productions = append(out[i].Productions, e.ProductionID)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Degree returns, for each author, the number of distinct collaborators.
func Degree(edges []Edge) map[int]int {
	seen := make(map[Pair]bool)
	deg := make(map[int]int)
	for _, e := range edges {
		p := NewPair(e.AuthorA, e.AuthorB)
		if seen[p] {
			continue
		}
		seen[p] = true
		deg[p.A]++
		deg[p.B]++
	}
	return deg
}
