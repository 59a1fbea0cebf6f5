package importer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/pipeline"
	"github.com/capesgraph/authormerge/internal/production"
)

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{";", ';', false},
		{"\t", '\t', false},
		{"|", '|', false},
		{",", 0, true},
		{";;", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDelimiter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadTable(t *testing.T) {
	data := "\ufeffA;B;C\n1;\"x, y\";z\n2;w\n"
	cols, recs, err := ReadTable(strings.NewReader(data), ';')
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if !reflect.DeepEqual(cols, []string{"A", "B", "C"}) {
		t.Errorf("cols = %v", cols)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if recs[0].Get("B") != "x, y" || recs[0].Line != 2 {
		t.Errorf("recs[0] = %+v", recs[0])
	}
	if recs[1].Get("C") != "" {
		t.Errorf("short row should leave C empty, got %q", recs[1].Get("C"))
	}
}

func TestReadMentions(t *testing.T) {
	data := strings.Join([]string{
		"ID_ADD_PRODUCAO_INTELECTUAL;ID_PESSOA;NM_AUTOR;SG_ENTIDADE_ENSINO;TP_AUTOR",
		"10;7;Silva, Ana;UFMG;DOCENTE",
		"x;;Bad Row;;",
		"11;;Ana Silva;UFMG;nan",
	}, "\n")
	report := fault.NewReport(0)
	mentions, err := ReadMentions(strings.NewReader(data), ';', report)
	if err != nil {
		t.Fatalf("ReadMentions() error = %v", err)
	}
	if len(mentions) != 2 {
		t.Fatalf("len = %d, want 2", len(mentions))
	}
	if mentions[0].PersonID != "7" || mentions[1].PersonID != "" {
		t.Errorf("person ids = %q, %q", mentions[0].PersonID, mentions[1].PersonID)
	}
	if mentions[0].Orphan.FirstLastName() != mentions[1].Orphan.FirstLastName() {
		t.Errorf("both spellings should share a key: %q vs %q", mentions[0].Orphan.FirstLastName(), mentions[1].Orphan.FirstLastName())
	}
	if report.Count(fault.MalformedField) != 1 {
		t.Errorf("MalformedField = %d, want 1", report.Count(fault.MalformedField))
	}
}

func TestReadMentions_MissingColumn(t *testing.T) {
	_, err := ReadMentions(strings.NewReader("NM_AUTOR\nAna\n"), ';', nil)
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("error = %v, want ErrMissingColumn", err)
	}
}

func TestReadAuthorTable(t *testing.T) {
	data := strings.Join([]string{
		"IDX;NM_AUTOR;TP_AUTOR;SG_ENTIDADE_ENSINO;ID_ADD_PRODUCAO_INTELECTUAL;PROD_COUNT",
		"1;Ana Silva;DOCENTE;UFMG;[10, 11];2",
		"2;Rui Costa;{'DISCENTE': 3, 'EGRESSO': 1};USP;[11];1",
		"3;Broken;DOCENTE;USP;not a list;0",
		"4;Empty;DOCENTE;USP;;0",
		"1;Dup;DOCENTE;USP;[1];1",
	}, "\n")
	report := fault.NewReport(0)
	rows, err := ReadAuthorTable(strings.NewReader(data), ';', pipeline.DefaultPriorities(), report)
	if err != nil {
		t.Fatalf("ReadAuthorTable() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("len = %d, want 4", len(rows))
	}
	if !reflect.DeepEqual(rows[0].ProductionIDs, []int{10, 11}) {
		t.Errorf("rows[0] productions = %v", rows[0].ProductionIDs)
	}
	if rows[1].Columns[author.Type] != "EGRESSO" {
		t.Errorf("priority pick = %q, want EGRESSO", rows[1].Columns[author.Type])
	}
	if len(rows[2].ProductionIDs) != 0 || len(rows[3].ProductionIDs) != 0 {
		t.Error("unparseable or empty production lists should be empty")
	}
	if report.Count(fault.ParseFault) != 1 {
		t.Errorf("ParseFault = %d, want 1 (empty cell is not a fault)", report.Count(fault.ParseFault))
	}
	if report.Count(fault.MalformedField) != 1 {
		t.Errorf("MalformedField = %d, want 1 (duplicate index)", report.Count(fault.MalformedField))
	}
}

func TestReadProductions(t *testing.T) {
	data := strings.Join([]string{
		"ID_ADD_PRODUCAO_INTELECTUAL;NM_LINHA_PESQUISA",
		"10;{'OPTICS': 2, 'LASERS': 1}",
		"11;OPTICS",
		"12;{'OPTICS'",
		"13;",
	}, "\n")
	report := fault.NewReport(0)
	catalog, err := ReadProductions(strings.NewReader(data), ';', report)
	if err != nil {
		t.Fatalf("ReadProductions() error = %v", err)
	}
	if catalog.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", catalog.Len())
	}
	p, _ := catalog.Get(10)
	if p.ResearchLines.Count("OPTICS") != 2 {
		t.Errorf("production 10 = %v", p.ResearchLines.Map())
	}
	for _, id := range []int{11, 12, 13} {
		p, _ := catalog.Get(id)
		if p.ResearchLines.Len() != 0 {
			t.Errorf("production %d should have no research lines, got %v", id, p.ResearchLines.Map())
		}
	}
	if report.Count(fault.MalformedField) != 1 || report.Count(fault.ParseFault) != 1 {
		t.Errorf("Counts() = %v", report.Counts())
	}
}

func TestResearchLines(t *testing.T) {
	tests := []struct {
		name       string
		cell       string
		wantReason fault.Reason
		wantLen    int
	}{
		{"mapping", "{'OPTICS': 2, 'LASERS': 1}", "", 2},
		{"blank", "", "", 0},
		{"nan", "nan", "", 0},
		{"scalar", "OPTICS", fault.MalformedField, 0},
		{"list", "['OPTICS']", fault.MalformedField, 0},
		{"bad literal", "{'OPTICS'", fault.ParseFault, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := researchLines("production 1", tt.cell)
			if res.Value == nil || res.Value.Len() != tt.wantLen {
				t.Fatalf("Value = %v, want %d lines", res.Value, tt.wantLen)
			}
			if tt.wantReason == "" {
				if res.Skipped() {
					t.Errorf("unexpected fault %v", res.Fault)
				}
				return
			}
			if !res.Skipped() || res.Fault.Reason != tt.wantReason {
				t.Errorf("Fault = %v, want %s", res.Fault, tt.wantReason)
			}
		})
	}
}

func TestFlexibleInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{`12`, 12, false},
		{`"12"`, 12, false},
		{`12.0`, 12, false},
		{`"abc"`, 0, true},
		{`[1]`, 0, true},
	}
	for _, tt := range tests {
		var f FlexibleInt
		err := json.Unmarshal([]byte(tt.input), &f)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && int(f) != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, f, tt.want)
		}
	}
}

func TestReadReplacementsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prod_id_replacements.json")
	if err := os.WriteFile(path, []byte(`{"101": 200, "102": "200"}`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadReplacementsFile(path)
	if err != nil {
		t.Fatalf("ReadReplacementsFile() error = %v", err)
	}
	want := production.Replacements{101: 200, 102: 200}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	empty, err := ReadReplacementsFile("")
	if err != nil || len(empty) != 0 {
		t.Errorf("ReadReplacementsFile(\"\") = %v, %v", empty, err)
	}
	if _, err := ParseReplacements([]byte(`{"x": 1}`)); err == nil {
		t.Error("non-integer key should fail")
	}
	if _, err := ReadReplacementsFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestReadCoauthorships(t *testing.T) {
	data := "AUTHOR_1;AUTHOR_2;PROD_ID\n1;3;10\n2;1;11\n4;4;12\nx;1;13\n"
	report := fault.NewReport(0)
	edges, err := ReadCoauthorships(strings.NewReader(data), ';', report)
	if err != nil {
		t.Fatalf("ReadCoauthorships() error = %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("len = %d, want 2", len(edges))
	}
	if edges[1].AuthorA != 1 || edges[1].AuthorB != 2 {
		t.Errorf("reversed pair should be reordered, got %+v", edges[1])
	}
	if report.Count(fault.MalformedField) != 2 {
		t.Errorf("MalformedField = %d, want 2", report.Count(fault.MalformedField))
	}
}
