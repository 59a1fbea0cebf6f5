// Package author defines canonical author profiles, orphan mentions, and the
// merge of one into the other.
package author

import (
	"sort"

	"github.com/capesgraph/authormerge/internal/attr"
)

// Attribute (column) names used across the scraped tables.
const (
	ProductionID    = "ID_ADD_PRODUCAO_INTELECTUAL"
	PersonID        = "ID_PESSOA"
	FullName        = "FULL_NAME" // display name, never merged
	Name            = "NM_AUTOR"
	ABNTName        = "NM_ABNT_AUTOR" // formatted citation name
	Type            = "TP_AUTOR"
	Institution     = "SG_ENTIDADE_ENSINO"
	ProgramName     = "NM_PROGRAMA_IES"
	ProgramCode     = "CD_PROGRAMA_IES"
	KnowledgeArea   = "NM_AREA_CONHECIMENTO"
	FacultyCategory = "NM_TP_CATEGORIA_DOCENTE"
	StudentLevel    = "NM_NIVEL_DISCENTE"
	FirstLastName   = "FIRST_LAST_NAME" // lookup key, not identity
	NameVariants    = "NAME_VARIANTS"   // raw names as scraped, list-typed
	ResearchLine    = "NM_LINHA_PESQUISA"
)

// AttributeNames lists every aggregated attribute in export column order.
var AttributeNames = []string{
	Name, ABNTName, Type, Institution, ProgramName, ProgramCode,
	KnowledgeArea, FacultyCategory, StudentLevel, FirstLastName, NameVariants,
}

// Attributes maps attribute names to values.
type Attributes map[string]attr.Value

// Get returns the named value, absent if missing.
func (a Attributes) Get(name string) attr.Value {
	if a == nil {
		return attr.Absent()
	}
	return a[name]
}

// Clone deep-copies every value.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// Profile is one canonical author.
type Profile struct {
	ID            int        `json:"idx"`
	DisplayName   string     `json:"full_name"`
	ProductionIDs []int      `json:"production_ids"` // sorted, unique, grows only
	Attributes    Attributes `json:"attributes"`
}

// NewProfile returns an empty profile. Its name-variant history starts as an
// empty list so merges append to it.
func NewProfile(id int, displayName string) *Profile {
	return &Profile{
		ID:          id,
		DisplayName: displayName,
		Attributes:  Attributes{NameVariants: attr.List()},
	}
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	return &Profile{
		ID:            p.ID,
		DisplayName:   p.DisplayName,
		ProductionIDs: append([]int(nil), p.ProductionIDs...),
		Attributes:    p.Attributes.Clone(),
	}
}

// AddProduction inserts id into the sorted production set.
func (p *Profile) AddProduction(id int) {
	i := sort.SearchInts(p.ProductionIDs, id)
	if i < len(p.ProductionIDs) && p.ProductionIDs[i] == id {
		return
	}
	p.ProductionIDs = append(p.ProductionIDs, 0)
	copy(p.ProductionIDs[i+1:], p.ProductionIDs[i:])
	p.ProductionIDs[i] = id
}

// HasProduction reports whether id is in the production set.
func (p *Profile) HasProduction(id int) bool {
	i := sort.SearchInts(p.ProductionIDs, id)
	return i < len(p.ProductionIDs) && p.ProductionIDs[i] == id
}

// FirstLastNames returns every first+last key ever observed for the profile.
func (p *Profile) FirstLastNames() []string {
	keys, err := p.Attributes.Get(FirstLastName).Keys()
	if err != nil {
		return nil
	}
	return keys
}

// Orphan is a partial author mention tied to exactly one production.
// It is never mutated after creation.
type Orphan struct {
	ProductionID int
	Attributes   Attributes
}

// FirstLastName returns the orphan's lookup key.
func (o Orphan) FirstLastName() string {
	s, _ := o.Attributes.Get(FirstLastName).AsScalar()
	return s
}

// DisplayName returns the orphan's normalized name, used when it becomes a profile.
func (o Orphan) DisplayName() string {
	s, _ := o.Attributes.Get(Name).AsScalar()
	return s
}
