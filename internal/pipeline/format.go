package pipeline

import (
	"strings"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/production"
)

// Extra columns of the formatted author table.
const (
	IndexColumn     = "IDX"
	ProdCountColumn = "PROD_COUNT"
)

// NotInformed replaces an author type that matched no priority entry.
const NotInformed = "NÃO INFORMADO"

// FormattedColumns are the attribute columns of the author exports, in order.
// The display name and the first+last key are helpers and are not exported.
var FormattedColumns = []string{
	author.Name, author.ABNTName, author.Type, author.Institution, author.ProgramName,
	author.ProgramCode, author.KnowledgeArea, author.FacultyCategory, author.StudentLevel,
	author.NameVariants,
}

// Priorities maps an attribute to its preference list. Attributes listed here
// are resolved with attr.PickByPriority instead of the most frequent value.
type Priorities map[string][]string

// DefaultPriorities ranks roles so a rare but more senior one wins.
func DefaultPriorities() Priorities {
	return Priorities{
		author.Type:            {"DOCENTE", "EGRESSO", "PÓS-DOC", "DISCENTE", "PARTICIPANTE EXTERNO"},
		author.FacultyCategory: {"PERMANENTE", "COLABORADOR", "VISITANTE"},
		author.StudentLevel:    {"DOUTORADO PROFISSIONAL", "BACHARELADO", "MESTRADO", "DOUTORADO", "MESTRADO PROFISSIONAL"},
	}
}

// Row is one formatted author: every attribute reduced to a single cell.
type Row struct {
	ID            int
	Columns       map[string]string
	ProductionIDs []int
	ResearchLine  string
}

// ProdCount is the number of productions of the author.
func (r Row) ProdCount() int {
	return len(r.ProductionIDs)
}

// Name returns the author's display name.
func (r Row) Name() string {
	return r.Columns[author.Name]
}

func (r Row) clone() Row {
	cols := make(map[string]string, len(r.Columns))
	for k, v := range r.Columns {
		cols[k] = v
	}
	r.Columns = cols
	r.ProductionIDs = append([]int(nil), r.ProductionIDs...)
	return r
}

// Format reduces every profile of t to a Row.
func Format(t *author.Table, priorities Priorities) []Row {
	rows := make([]Row, 0, t.Len())
	for _, p := range t.Profiles() {
		cols := make(map[string]string, len(FormattedColumns))
		for _, col := range FormattedColumns {
			cols[col] = FormatValue(col, p.Attributes.Get(col), priorities)
		}
		if cols[author.Name] == attr.Unknown && p.DisplayName != "" {
			cols[author.Name] = p.DisplayName
		}
		rows = append(rows, Row{
			ID:            p.ID,
			Columns:       cols,
			ProductionIDs: append([]int(nil), p.ProductionIDs...),
		})
	}
	return rows
}

// FormatValue reduces one attribute value to its export cell.
func FormatValue(col string, v attr.Value, priorities Priorities) string {
	if col == author.NameVariants {
		if v.Kind() == attr.KindList {
			return v.String()
		}
		return attr.List().String()
	}
	if list, ok := priorities[col]; ok {
		pick, found := attr.PickByPriority(list, attr.AsFreqMap(v))
		if found {
			return pick
		}
		if col == author.Type {
			return NotInformed
		}
		return ""
	}
	return attr.Pick(v)
}

// FormatCell reduces a cell read back from an author table. Cells that
// already hold a single value are kept; mapping literals are reduced the way
// Format does.
func FormatCell(col, cell string, priorities Priorities) (string, error) {
	s := strings.TrimSpace(cell)
	if col == author.NameVariants || (s != "" && s[0] != '{') {
		return s, nil
	}
	v, err := attr.ParseCell(s)
	if err != nil {
		return "", err
	}
	return FormatValue(col, v, priorities), nil
}

// ReplaceRows rewrites every row's productions through the table. Two IDs
// replaced by the same survivor collapse into one.
func ReplaceRows(rows []Row, r production.Replacements) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		c := row.clone()
		c.ProductionIDs = r.ReplaceAll(row.ProductionIDs)
		out[i] = c
	}
	return out
}

// FinalRow is one (author, production) pair of the exploded export.
type FinalRow struct {
	Row
	ProductionID int
}

// Explode emits one row per production of each author, in author then
// production order. Authors without productions produce no rows.
func Explode(rows []Row) []FinalRow {
	n := 0
	for _, r := range rows {
		n += len(r.ProductionIDs)
	}
	out := make([]FinalRow, 0, n)
	for _, r := range rows {
		for _, id := range r.ProductionIDs {
			out = append(out, FinalRow{Row: r, ProductionID: id})
		}
	}
	return out
}

// Assignment returns author ID → production IDs.
func Assignment(rows []Row) map[int][]int {
	out := make(map[int][]int, len(rows))
	for _, r := range rows {
		out[r.ID] = append(out[r.ID], r.ProductionIDs...)
	}
	return out
}
