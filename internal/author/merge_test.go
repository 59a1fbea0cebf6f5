package author

import (
	"reflect"
	"testing"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/fault"
)

func testProfile() *Profile {
	p := NewProfile(7, "Joao Silva")
	p.ProductionIDs = []int{10, 12}
	p.Attributes[Institution] = attr.Frequency(attr.FreqMapOf("UFRJ", 2))
	p.Attributes[FirstLastName] = attr.Frequency(attr.FreqMapOf("JOAO SILVA", 2))
	p.Attributes[NameVariants] = attr.List("SILVA, JOÃO", "João Silva")
	return p
}

func testOrphan() Orphan {
	return Orphan{
		ProductionID: 11,
		Attributes: Attributes{
			Name:          attr.Scalar("Joao C Silva"),
			Institution:   attr.Scalar("UFRJ"),
			ProgramName:   attr.Scalar("FISICA"),
			FirstLastName: attr.Scalar("JOAO SILVA"),
			NameVariants:  attr.Scalar("Silva, João C."),
			FullName:      attr.Scalar("Somebody Else"),
		},
	}
}

func TestMerge_AccumulatesAndAppends(t *testing.T) {
	res := Merge(testProfile(), testOrphan(), DefaultSchema())
	if len(res.Faults) != 0 {
		t.Fatalf("unexpected faults: %v", res.Faults)
	}
	p := res.Profile

	inst, ok := p.Attributes.Get(Institution).AsFrequency()
	if !ok || inst.Count("UFRJ") != 3 {
		t.Errorf("Institution = %v, want UFRJ=3", p.Attributes.Get(Institution))
	}

	prog, ok := p.Attributes.Get(ProgramName).AsFrequency()
	if !ok || prog.Count("FISICA") != 1 {
		t.Errorf("ProgramName = %v, want FISICA=1", p.Attributes.Get(ProgramName))
	}

	variants, ok := p.Attributes.Get(NameVariants).AsList()
	want := []string{"SILVA, JOÃO", "João Silva", "Silva, João C."}
	if !ok || !reflect.DeepEqual(variants, want) {
		t.Errorf("NameVariants = %v, want %v", variants, want)
	}

	if !reflect.DeepEqual(p.ProductionIDs, []int{10, 11, 12}) {
		t.Errorf("ProductionIDs = %v, want [10 11 12]", p.ProductionIDs)
	}
}

func TestMerge_KeepsDisplayName(t *testing.T) {
	res := Merge(testProfile(), testOrphan(), NewSchema(append(AttributeNames, FullName)...))
	if res.Profile.DisplayName != "Joao Silva" {
		t.Errorf("DisplayName = %q, want %q", res.Profile.DisplayName, "Joao Silva")
	}
	if _, ok := res.Profile.Attributes[FullName]; ok {
		t.Error("FullName should never be merged into attributes")
	}
}

func TestMerge_NonDestructive(t *testing.T) {
	orig := testProfile()
	snapshot := orig.Clone()

	_ = Merge(orig, testOrphan(), DefaultSchema())

	if !reflect.DeepEqual(orig.ProductionIDs, snapshot.ProductionIDs) {
		t.Errorf("ProductionIDs changed: %v -> %v", snapshot.ProductionIDs, orig.ProductionIDs)
	}
	for name, v := range snapshot.Attributes {
		if got := orig.Attributes[name].String(); got != v.String() {
			t.Errorf("%s changed: %q -> %q", name, v.String(), got)
		}
	}
	if len(orig.Attributes) != len(snapshot.Attributes) {
		t.Errorf("attribute count changed: %d -> %d", len(snapshot.Attributes), len(orig.Attributes))
	}
}

func TestMerge_OutsideSchemaUntouched(t *testing.T) {
	res := Merge(testProfile(), testOrphan(), NewSchema(Institution))
	if _, ok := res.Profile.Attributes[ProgramName]; ok {
		t.Error("ProgramName is outside the schema and should not be merged")
	}
	if !res.Profile.HasProduction(11) {
		t.Error("production should be added regardless of schema")
	}
}

func TestMerge_MalformedFieldIsSoft(t *testing.T) {
	o := testOrphan()
	o.Attributes[Institution] = attr.List("UFRJ", "USP") // wrong shape for a mapping

	res := Merge(testProfile(), o, DefaultSchema())
	if len(res.Faults) != 1 {
		t.Fatalf("faults = %v, want 1", res.Faults)
	}
	if res.Faults[0].Reason != fault.MalformedField || res.Faults[0].Field != Institution {
		t.Errorf("fault = %+v", res.Faults[0])
	}
	inst, _ := res.Profile.Attributes.Get(Institution).AsFrequency()
	if inst.Count("UFRJ") != 2 {
		t.Errorf("faulty contribution should be empty, UFRJ = %d", inst.Count("UFRJ"))
	}
	if !res.Profile.HasProduction(11) {
		t.Error("merge should still add the production")
	}
}

func TestMerge_TwiceCountsTwice(t *testing.T) {
	o := testOrphan()
	schema := DefaultSchema()
	once := Merge(testProfile(), o, schema).Profile
	twice := Merge(once, o, schema).Profile

	inst, _ := twice.Attributes.Get(Institution).AsFrequency()
	if inst.Count("UFRJ") != 4 {
		t.Errorf("UFRJ = %d, want 4", inst.Count("UFRJ"))
	}
	if len(twice.ProductionIDs) != 3 {
		t.Errorf("ProductionIDs = %v, production set should not duplicate", twice.ProductionIDs)
	}
}

func TestBuild(t *testing.T) {
	mentions := []Orphan{
		{ProductionID: 3, Attributes: Attributes{Name: attr.Scalar("Ana Lima"), Type: attr.Scalar("DOCENTE")}},
		{ProductionID: 1, Attributes: Attributes{Name: attr.Scalar("Ana M Lima"), Type: attr.Scalar("DOCENTE")}},
		{ProductionID: 2, Attributes: Attributes{Name: attr.Scalar("Ana M Lima")}},
	}

	res := Build(4, mentions, DefaultSchema())
	p := res.Profile
	if p.ID != 4 {
		t.Errorf("ID = %d, want 4", p.ID)
	}
	if p.DisplayName != "Ana M Lima" {
		t.Errorf("DisplayName = %q, want most frequent name", p.DisplayName)
	}
	if !reflect.DeepEqual(p.ProductionIDs, []int{1, 2, 3}) {
		t.Errorf("ProductionIDs = %v", p.ProductionIDs)
	}
	types, _ := p.Attributes.Get(Type).AsFrequency()
	if types.Count("DOCENTE") != 2 {
		t.Errorf("DOCENTE = %d, want 2", types.Count("DOCENTE"))
	}
}

func TestProfile_AddProduction(t *testing.T) {
	p := NewProfile(1, "x")
	for _, id := range []int{5, 1, 3, 5, 1} {
		p.AddProduction(id)
	}
	if !reflect.DeepEqual(p.ProductionIDs, []int{1, 3, 5}) {
		t.Errorf("ProductionIDs = %v, want [1 3 5]", p.ProductionIDs)
	}
	if p.HasProduction(2) {
		t.Error("HasProduction(2) = true")
	}
}
