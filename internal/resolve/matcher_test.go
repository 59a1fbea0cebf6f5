package resolve

import (
	"testing"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/author"
)

func freq(pairs ...any) attr.Value {
	return attr.Frequency(attr.FreqMapOf(pairs...))
}

func candidateAttrs() author.Attributes {
	return author.Attributes{
		author.FirstLastName: freq("JOAO SILVA", 3, "J SILVA", 1),
		author.ABNTName:      freq("SILVA, J.", 3),
		author.Institution:   freq("UFRJ", 2, "USP", 1),
		author.ProgramName:   freq("FISICA", 3),
		author.Type:          freq("DOCENTE", 2, "-", 1),
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		orphan author.Attributes
		want   int
	}{
		{
			name:   "name only",
			orphan: author.Attributes{author.FirstLastName: attr.Scalar("JOAO SILVA")},
			want:   2,
		},
		{
			name: "name and every attribute",
			orphan: author.Attributes{
				author.FirstLastName: attr.Scalar("JOAO SILVA"),
				author.ABNTName:      attr.Scalar("SILVA, J."),
				author.Institution:   attr.Scalar("UFRJ"),
				author.ProgramName:   attr.Scalar("FISICA"),
				author.Type:          attr.Scalar("DOCENTE"),
			},
			want: 6,
		},
		{
			name: "unknown author type does not count",
			orphan: author.Attributes{
				author.FirstLastName: attr.Scalar("JOAO SILVA"),
				author.Type:          attr.Scalar("-"),
			},
			want: 2,
		},
		{
			name: "each matching name adds weight",
			orphan: author.Attributes{
				author.FirstLastName: freq("JOAO SILVA", 1, "J SILVA", 1),
			},
			want: 4,
		},
		{
			name: "attribute mismatch adds nothing",
			orphan: author.Attributes{
				author.FirstLastName: attr.Scalar("JOAO SILVA"),
				author.Institution:   attr.Scalar("UFMG"),
			},
			want: 2,
		},
		{
			name: "empty orphan attribute is not compared",
			orphan: author.Attributes{
				author.FirstLastName: attr.Scalar("JOAO SILVA"),
				author.Institution:   attr.Frequency(attr.NewFreqMap()),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(candidateAttrs(), tt.orphan); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_NameGateIsHard(t *testing.T) {
	orphan := author.Attributes{
		author.FirstLastName: attr.Scalar("MARIA SOUZA"),
		author.ABNTName:      attr.Scalar("SILVA, J."),
		author.Institution:   attr.Scalar("UFRJ"),
		author.ProgramName:   attr.Scalar("FISICA"),
		author.Type:          attr.Scalar("DOCENTE"),
	}
	if got := Score(candidateAttrs(), orphan); got != 0 {
		t.Errorf("Score() = %d, want 0 without a name match", got)
	}

	noName := author.Attributes{author.Institution: attr.Scalar("UFRJ")}
	if got := Score(candidateAttrs(), noName); got != 0 {
		t.Errorf("Score() = %d, want 0 when orphan has no name", got)
	}
}

func TestScore_NameGateSymmetric(t *testing.T) {
	pairs := []struct {
		a, b author.Attributes
	}{
		{
			author.Attributes{author.FirstLastName: freq("JOAO SILVA", 1), author.Institution: freq("UFRJ", 1)},
			author.Attributes{author.FirstLastName: attr.Scalar("JOAO SILVA")},
		},
		{
			author.Attributes{author.FirstLastName: freq("ANA LIMA", 2)},
			author.Attributes{author.FirstLastName: attr.Scalar("JOAO SILVA"), author.Institution: attr.Scalar("UFRJ")},
		},
		{
			author.Attributes{author.FirstLastName: attr.List("A B", "C D")},
			author.Attributes{author.FirstLastName: freq("C D", 1, "E F", 4)},
		},
	}

	for i, p := range pairs {
		forward := Score(p.a, p.b) > 0
		backward := Score(p.b, p.a) > 0
		if forward != backward {
			t.Errorf("pair %d: gate forward=%v backward=%v", i, forward, backward)
		}
	}
}

func TestScore_UnparseableAttributeIgnored(t *testing.T) {
	broken, err := attr.ParseCell("{'x': -1}")
	if err == nil {
		t.Fatal("expected parse fault")
	}

	c := candidateAttrs()
	o := author.Attributes{author.FirstLastName: attr.Scalar("JOAO SILVA"), author.Institution: broken}
	if got := Score(c, o); got != 2 {
		t.Errorf("absent (unparseable) attribute should simply not count, got %d", got)
	}
}

func TestIndex(t *testing.T) {
	a := author.NewProfile(5, "Joao Silva")
	a.Attributes[author.FirstLastName] = freq("JOAO SILVA", 1)
	b := author.NewProfile(2, "J Silva")
	b.Attributes[author.FirstLastName] = freq("JOAO SILVA", 1, "J SILVA", 1)

	idx := NewIndex(author.NewTable(a, b))
	got := idx.Candidates("JOAO SILVA")
	if len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Errorf("Candidates() = %v, want [2 5]", got)
	}

	idx.Add(b)
	if len(idx.Candidates("J SILVA")) != 1 {
		t.Errorf("re-adding a profile should not duplicate it")
	}
	if len(idx.Candidates("NOBODY")) != 0 {
		t.Error("unknown key should have no candidates")
	}
}
