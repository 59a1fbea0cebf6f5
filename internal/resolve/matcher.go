// Package resolve links orphan author mentions to canonical profiles.
package resolve

import (
	"fmt"
	"sort"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/author"
)

// Weights for each kind of evidence.
const (
	NameWeight      = 2
	AttributeWeight = 1
)

// overlapAttributes are compared once the name gate passes. Type is handled apart
// because the unknown sentinel never counts as agreement.
var overlapAttributes = []string{author.ABNTName, author.Institution, author.ProgramName}

// Score rates how likely candidate and orphan are the same person. Any fault
// while scoring yields 0.
func Score(candidate, orphan author.Attributes) int {
	n, err := ScoreChecked(candidate, orphan)
	if err != nil {
		return 0
	}
	return n
}

// ScoreChecked is Score with the fault exposed.
//
// Every first+last name of the orphan found among the candidate's names adds
// NameWeight. No name in common means 0, whatever else agrees. Past that gate,
// each orphan value also held by the candidate adds AttributeWeight, for the
// citation name, institution, program and author type (except Unknown).
// An attribute is only compared when both sides carry a non-empty value.
func ScoreChecked(candidate, orphan author.Attributes) (int, error) {
	n, err := overlap(candidate.Get(author.FirstLastName), orphan.Get(author.FirstLastName), nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", author.FirstLastName, err)
	}
	if n == 0 {
		return 0, nil
	}
	score := n * NameWeight

	for _, name := range overlapAttributes {
		k, err := overlap(candidate.Get(name), orphan.Get(name), nil)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		score += k * AttributeWeight
	}

	k, err := overlap(candidate.Get(author.Type), orphan.Get(author.Type), map[string]bool{attr.Unknown: true})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", author.Type, err)
	}
	score += k * AttributeWeight

	return score, nil
}

// overlap counts the orphan's distinct values also present on the candidate side.
func overlap(candidate, orphan attr.Value, ignore map[string]bool) (int, error) {
	if candidate.IsEmpty() || orphan.IsEmpty() {
		return 0, nil
	}
	have, err := candidate.Keys()
	if err != nil {
		return 0, err
	}
	want, err := orphan.Keys()
	if err != nil {
		return 0, err
	}
	set := make(map[string]bool, len(have))
	for _, k := range have {
		set[k] = true
	}
	n := 0
	for _, k := range want {
		if set[k] && !ignore[k] {
			n++
		}
	}
	return n, nil
}

// Index maps first+last name keys to the profiles that carry them, so an
// orphan is only scored against authors sharing a name.
type Index struct {
	byName map[string][]int
}

// NewIndex indexes every profile of t.
func NewIndex(t *author.Table) *Index {
	idx := &Index{byName: make(map[string][]int)}
	for _, p := range t.Profiles() {
		idx.Add(p)
	}
	return idx
}

// Add indexes p under each of its names. Adding the same profile again is harmless.
func (idx *Index) Add(p *author.Profile) {
	for _, key := range p.FirstLastNames() {
		ids := idx.byName[key]
		i := sort.SearchInts(ids, p.ID)
		if i < len(ids) && ids[i] == p.ID {
			continue
		}
		ids = append(ids, 0)
		copy(ids[i+1:], ids[i:])
		ids[i] = p.ID
		idx.byName[key] = ids
	}
}

// Candidates returns the IDs of profiles known under key, ascending.
func (idx *Index) Candidates(key string) []int {
	return append([]int(nil), idx.byName[key]...)
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.byName)
}
