package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/author"
)

func sampleTable() *author.Table {
	a := author.NewProfile(0, "Ana Silva")
	a.ProductionIDs = []int{10, 11}
	a.Attributes[author.Name] = attr.Frequency(attr.FreqMapOf("Ana Silva", 2))
	a.Attributes[author.Institution] = attr.Frequency(attr.FreqMapOf("UFMG", 1, "USP", 1))
	a.Attributes[author.NameVariants] = attr.List("Silva, Ana", "Ana Silva")

	b := author.NewProfile(1, "Rui Costa")
	b.ProductionIDs = []int{11}
	return author.NewTable(a, b)
}

func TestProfiles_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.jsonl")
	in := sampleTable()
	if err := WriteProfiles(path, in); err != nil {
		t.Fatalf("WriteProfiles() error = %v", err)
	}

	out, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Len())
	}
	ana, _ := out.Get(0)
	if ana.DisplayName != "Ana Silva" || !reflect.DeepEqual(ana.ProductionIDs, []int{10, 11}) {
		t.Errorf("profile 0 = %+v", ana)
	}
	inst, ok := ana.Attributes.Get(author.Institution).AsFrequency()
	if !ok || !reflect.DeepEqual(inst.Keys(), []string{"UFMG", "USP"}) {
		t.Errorf("institution = %v", ana.Attributes.Get(author.Institution))
	}
	if variants, _ := ana.Attributes.Get(author.NameVariants).AsList(); len(variants) != 2 {
		t.Errorf("name variants = %v", variants)
	}
}

func TestReadProfiles_Missing(t *testing.T) {
	profiles, err := ReadProfiles(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil || profiles != nil {
		t.Errorf("ReadProfiles(missing) = %v, %v", profiles, err)
	}
}

func TestReadProfiles_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.jsonl")
	content := `{"idx":0,"full_name":"A","production_ids":[1],"attributes":{}}` + "\n\n" + `{"idx":` + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadProfiles(path)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error = %v, want a line 3 parse error", err)
	}
}
