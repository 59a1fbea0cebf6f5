package production

import (
	"fmt"
	"sort"

	"github.com/capesgraph/authormerge/internal/fault"
)

// Replacements maps production IDs retired by production deduplication to the
// ID that survived.
type Replacements map[int]int

// Replace returns the surviving ID for id; unmapped IDs pass through.
func (r Replacements) Replace(id int) int {
	if to, ok := r[id]; ok {
		return to
	}
	return id
}

// ReplaceAll maps every ID through the table, dropping duplicates created when
// two retired IDs land on the same survivor. The result is sorted.
func (r Replacements) ReplaceAll(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		to := r.Replace(id)
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	sort.Ints(out)
	return out
}

// Flatten collapses replacement chains so every entry points at a final ID
// (a→b, b→c becomes a→c, b→c). After flattening Replace is idempotent.
// Entries that loop back on themselves are dropped and reported.
func (r Replacements) Flatten(report *fault.Report) Replacements {
	out := make(Replacements, len(r))
	keys := make([]int, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, from := range keys {
		to := r[from]
		if to == from {
			continue
		}
		visited := map[int]bool{from: true}
		cycle := false
		for {
			next, ok := r[to]
			if !ok || next == to {
				break
			}
			if visited[to] {
				cycle = true
				break
			}
			visited[to] = true
			to = next
		}
		if cycle || to == from {
			report.Add(fault.New(fault.ReplacementCycle, fmt.Sprintf("production %d", from), "", "replacement chain loops"))
			continue
		}
		out[from] = to
	}
	return out
}

// Sorted returns the entries ordered by retired ID, for stable output.
func (r Replacements) Sorted() [][2]int {
	out := make([][2]int, 0, len(r))
	for k, v := range r {
		out = append(out, [2]int{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
