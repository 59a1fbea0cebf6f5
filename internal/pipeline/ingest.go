package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/normalize"
	"github.com/capesgraph/authormerge/internal/production"
)

// mentionColumns are copied from a mention row into the orphan's attributes.
// Names are handled apart.
var mentionColumns = []string{
	author.ABNTName, author.Type, author.Institution, author.ProgramName,
	author.ProgramCode, author.KnowledgeArea, author.FacultyCategory, author.StudentLevel,
}

// Mention is one (production, author) pairing from the scraped table. Mentions
// with a PersonID belong to a known person; the rest are orphans.
type Mention struct {
	Line     int
	PersonID string
	Orphan   author.Orphan
}

// ParseMention builds a mention from a row's cells. The author name is
// normalized and its first+last key derived; the raw name is kept as a name
// variant. A row without a usable production ID is skipped.
func ParseMention(line int, cells map[string]string, report *fault.Report) (Mention, bool) {
	record := fmt.Sprintf("row %d", line)
	rawProd := strings.TrimSpace(cells[author.ProductionID])
	prodID, err := strconv.Atoi(strings.TrimSuffix(rawProd, ".0"))
	if err != nil {
		report.Add(fault.New(fault.MalformedField, record, author.ProductionID, "invalid production id %q", rawProd))
		return Mention{}, false
	}

	attrs := make(author.Attributes, len(mentionColumns)+3)
	for _, col := range mentionColumns {
		cell, ok := cells[col]
		if !ok {
			continue
		}
		v, err := attr.ParseCell(cell)
		if err != nil {
			report.Add(fault.New(fault.ParseFault, record, col, "%v", err))
			continue
		}
		if v.Kind() != attr.KindAbsent {
			attrs[col] = v
		}
	}

	raw := strings.TrimSpace(cells[author.Name])
	if raw != "" && raw != attr.Missing {
		if name := normalize.Name(raw); name != "" {
			attrs[author.Name] = attr.Scalar(name)
			attrs[author.FirstLastName] = attr.Scalar(strings.ToUpper(normalize.FirstLast(name)))
		}
		attrs[author.NameVariants] = attr.List(raw)
	}

	person := strings.TrimSpace(cells[author.PersonID])
	if person == attr.Missing {
		person = ""
	}
	return Mention{
		Line:     line,
		PersonID: strings.TrimSuffix(person, ".0"),
		Orphan:   author.Orphan{ProductionID: prodID, Attributes: attrs},
	}, true
}

// ReplaceMentions rewrites every mention's production ID through the table.
func ReplaceMentions(mentions []Mention, r production.Replacements) []Mention {
	out := make([]Mention, len(mentions))
	for i, m := range mentions {
		m.Orphan.ProductionID = r.Replace(m.Orphan.ProductionID)
		out[i] = m
	}
	return out
}

// BuildProfiles aggregates the mentions of each known person into a profile
// and returns the remaining mentions as orphans, both in input order. Profile
// IDs are assigned from 0 in order of first appearance.
func BuildProfiles(mentions []Mention, schema author.Schema, report *fault.Report) (*author.Table, []author.Orphan) {
	var order []string
	groups := make(map[string][]author.Orphan)
	var orphans []author.Orphan
	for _, m := range mentions {
		if m.PersonID == "" {
			orphans = append(orphans, m.Orphan)
			continue
		}
		if _, ok := groups[m.PersonID]; !ok {
			order = append(order, m.PersonID)
		}
		groups[m.PersonID] = append(groups[m.PersonID], m.Orphan)
	}

	b := author.NewBuilder(nil)
	for _, person := range order {
		res := author.Build(b.NextID(), groups[person], schema)
		for _, f := range res.Faults {
			report.Add(f)
		}
		b.Put(res.Profile)
	}
	return b.Freeze(), orphans
}
