package production

import (
	"reflect"
	"testing"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/fault"
)

func TestReplacements_Replace(t *testing.T) {
	r := Replacements{10: 20, 11: 20}

	if got := r.Replace(10); got != 20 {
		t.Errorf("Replace(10) = %d, want 20", got)
	}
	if got := r.Replace(99); got != 99 {
		t.Errorf("Replace(99) = %d, want passthrough", got)
	}
	if got := r.ReplaceAll([]int{11, 5, 10}); !reflect.DeepEqual(got, []int{5, 20}) {
		t.Errorf("ReplaceAll() = %v, want [5 20]", got)
	}
	if got := (Replacements{}).ReplaceAll([]int{3, 1}); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("empty table ReplaceAll() = %v", got)
	}
}

func TestReplacements_FlattenIsIdempotent(t *testing.T) {
	r := Replacements{1: 2, 2: 3, 3: 4, 7: 8}
	report := fault.NewReport(0)
	flat := r.Flatten(report)

	want := Replacements{1: 4, 2: 4, 3: 4, 7: 8}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("Flatten() = %v, want %v", flat, want)
	}
	if report.Total() != 0 {
		t.Errorf("unexpected faults: %v", report.Samples())
	}

	for _, id := range []int{1, 2, 3, 4, 5, 7, 8} {
		once := flat.Replace(id)
		if twice := flat.Replace(once); twice != once {
			t.Errorf("Replace(Replace(%d)) = %d, want %d", id, twice, once)
		}
	}
}

func TestReplacements_FlattenReportsCycles(t *testing.T) {
	r := Replacements{1: 2, 2: 1, 5: 5, 6: 7}
	report := fault.NewReport(0)
	flat := r.Flatten(report)

	if _, ok := flat[1]; ok {
		t.Error("cyclic entry 1 should be dropped")
	}
	if _, ok := flat[5]; ok {
		t.Error("identity entry 5 should be dropped")
	}
	if flat[6] != 7 {
		t.Errorf("flat[6] = %d, want 7", flat[6])
	}
	if report.Count(fault.ReplacementCycle) != 2 {
		t.Errorf("ReplacementCycle faults = %d, want 2", report.Count(fault.ReplacementCycle))
	}
}

func TestCatalog_ResearchLines(t *testing.T) {
	c := NewCatalog([]Production{
		{ID: 1, ResearchLines: attr.FreqMapOf("OPTICS", 1, "LASERS", 2)},
		{ID: 2, ResearchLines: attr.FreqMapOf("OPTICS", 2)},
	})

	res := c.ResearchLines("author 0", []int{1, 2})
	if res.Skipped() {
		t.Fatalf("unexpected fault: %v", res.Fault)
	}
	if res.Value.Count("OPTICS") != 3 || res.Value.Count("LASERS") != 2 {
		t.Errorf("ResearchLines() = %v", res.Value.Map())
	}

	report := fault.NewReport(0)
	if got := c.TopResearchLine("author 0", []int{1, 2, 404}, report); got != "OPTICS" {
		t.Errorf("TopResearchLine() = %q, want OPTICS", got)
	}
	if report.Count(fault.LookupMiss) != 1 {
		t.Errorf("LookupMiss = %d, want 1", report.Count(fault.LookupMiss))
	}

	if got := c.TopResearchLine("author 1", nil, nil); got != "" {
		t.Errorf("TopResearchLine(no productions) = %q, want empty", got)
	}
}

func TestCatalog_ResearchLinesTieKeepsFirstSeen(t *testing.T) {
	c := NewCatalog([]Production{
		{ID: 1, ResearchLines: attr.FreqMapOf("B", 1)},
		{ID: 2, ResearchLines: attr.FreqMapOf("A", 1)},
	})
	if got := c.TopResearchLine("x", []int{1, 2}, nil); got != "B" {
		t.Errorf("TopResearchLine() = %q, want B", got)
	}
}
