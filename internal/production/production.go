// Package production defines production records and the production-ID
// replacement table.
package production

import (
	"fmt"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/fault"
)

// Production is one publication and the research lines tagged on it by its venues.
type Production struct {
	ID            int
	ResearchLines *attr.FreqMap
}

// Catalog indexes productions by ID. It is read-only after construction.
type Catalog struct {
	byID map[int]Production
}

// NewCatalog indexes productions. A repeated ID keeps the last row.
func NewCatalog(prods []Production) *Catalog {
	c := &Catalog{byID: make(map[int]Production, len(prods))}
	for _, p := range prods {
		c.byID[p.ID] = p
	}
	return c
}

// Len returns the number of productions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}

// Get returns the production with the given ID.
func (c *Catalog) Get(id int) (Production, bool) {
	if c == nil {
		return Production{}, false
	}
	p, ok := c.byID[id]
	return p, ok
}

// ResearchLines sums the research-line mappings of the given productions.
// A production missing from the catalog is a lookup miss: it is skipped and
// reported, the remaining productions still count.
func (c *Catalog) ResearchLines(record string, ids []int) fault.Result[*attr.FreqMap] {
	total := attr.NewFreqMap()
	var first *fault.Fault
	misses := 0
	for _, id := range ids {
		p, ok := c.Get(id)
		if !ok {
			misses++
			if first == nil {
				f := fault.New(fault.LookupMiss, record, "", "production %d not found", id)
				first = &f
			}
			continue
		}
		_ = attr.Accumulate(total, attr.Frequency(p.ResearchLines))
	}
	if first == nil {
		return fault.OK(total)
	}
	if misses > 1 {
		first.Detail = fmt.Sprintf("%s (and %d more)", first.Detail, misses-1)
	}
	return fault.Result[*attr.FreqMap]{Value: total, Fault: first}
}

// TopResearchLine returns the most common research line across ids, or "" if none.
func (c *Catalog) TopResearchLine(record string, ids []int, report *fault.Report) string {
	lines := fault.Take(report, c.ResearchLines(record, ids))
	top, ok := lines.Top()
	if !ok {
		return ""
	}
	return top
}
