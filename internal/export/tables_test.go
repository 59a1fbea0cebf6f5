package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/fault"
	"github.com/capesgraph/authormerge/internal/importer"
	"github.com/capesgraph/authormerge/internal/pipeline"
	"github.com/capesgraph/authormerge/internal/production"
)

func sampleRows() []pipeline.Row {
	return []pipeline.Row{
		{ID: 1, Columns: map[string]string{author.Name: "Ana Silva", author.Institution: "UFMG", author.Type: "DOCENTE"}, ProductionIDs: []int{10, 11}},
		{ID: 2, Columns: map[string]string{author.Name: "Rui; Costa", author.Type: "DISCENTE"}, ProductionIDs: []int{11}},
		{ID: 3, Columns: map[string]string{author.Name: "Lia Reis", author.Type: "EGRESSO"}, ProductionIDs: []int{10}},
	}
}

func TestWriteCoauthorships_Scenario(t *testing.T) {
	post, err := pipeline.PostProcess(context.Background(), sampleRows(), nil, production.Replacements{}, pipeline.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCoauthorships(&buf, post.Edges, ';'); err != nil {
		t.Fatalf("WriteCoauthorships() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"AUTHOR_1;AUTHOR_2;PROD_ID", "1;3;10", "1;2;11"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("output = %q, want %q", lines, want)
	}
}

func TestWriteCoauthorships_KeepsRepeatedPairs(t *testing.T) {
	edges := []coauthor.Edge{{AuthorA: 1, AuthorB: 2, ProductionID: 5}, {AuthorA: 1, AuthorB: 2, ProductionID: 6}}
	var buf bytes.Buffer
	if err := WriteCoauthorships(&buf, edges, '|'); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "1|2|"); got != 2 {
		t.Errorf("repeated pair rows = %d, want 2", got)
	}
}

func TestWriters_RejectComma(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCoauthorships(&buf, nil, ',')
	if !errors.Is(err, importer.ErrBadDelimiter) {
		t.Errorf("error = %v, want ErrBadDelimiter", err)
	}
	if err := WriteAuthorTable(&buf, nil, ','); !errors.Is(err, importer.ErrBadDelimiter) {
		t.Errorf("error = %v, want ErrBadDelimiter", err)
	}
}

func TestWriteFinalAuthors(t *testing.T) {
	rows := sampleRows()
	rows[0].ResearchLine = "OPTICS"
	var buf bytes.Buffer
	if err := WriteFinalAuthors(&buf, pipeline.Explode(rows), ';'); err != nil {
		t.Fatal(err)
	}

	_, recs, err := importer.ReadTable(&buf, ';')
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 4 {
		t.Fatalf("rows = %d, want 4 (one per author and production)", len(recs))
	}
	first := recs[0]
	if first.Get(author.ProductionID) != "10" || first.Get(pipeline.ProdCountColumn) != "2" || first.Get(author.ResearchLine) != "OPTICS" {
		t.Errorf("first row = %v", first.Cells)
	}
	if recs[2].Get(author.Name) != "Rui; Costa" {
		t.Errorf("embedded delimiter lost: %q", recs[2].Get(author.Name))
	}
}

func TestAuthorTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", PreliminaryFile)
	rows := sampleRows()
	err := WriteFile(path, func(w io.Writer) error { return WriteAuthorTable(w, rows, ';') })
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := importer.ReadAuthorTableFile(path, ';', pipeline.DefaultPriorities(), fault.NewReport(0))
	if err != nil {
		t.Fatalf("ReadAuthorTableFile() error = %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("len = %d, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i].ID != rows[i].ID || !reflect.DeepEqual(got[i].ProductionIDs, rows[i].ProductionIDs) {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
		if got[i].Name() != rows[i].Name() || got[i].Columns[author.Type] != rows[i].Columns[author.Type] {
			t.Errorf("row %d columns = %v", i, got[i].Columns)
		}
	}
}

func TestWriteFile_FailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FinalAuthorsFile)
	boom := errors.New("boom")
	if err := WriteFile(path, func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed write should not create the target file")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFormatIDList(t *testing.T) {
	if got := FormatIDList([]int{10, 11}); got != "[10, 11]" {
		t.Errorf("FormatIDList() = %q", got)
	}
	if got := FormatIDList(nil); got != "[]" {
		t.Errorf("FormatIDList(nil) = %q", got)
	}
}
