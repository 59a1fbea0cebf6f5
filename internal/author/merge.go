package author

import (
	"fmt"

	"github.com/capesgraph/authormerge/internal/attr"
	"github.com/capesgraph/authormerge/internal/fault"
)

// Schema is the allow-list of mergeable attributes. The display name is never
// part of it.
type Schema struct {
	order []string
	allow map[string]bool
}

// NewSchema builds a schema from attribute names. FullName and duplicates are dropped.
func NewSchema(names ...string) Schema {
	s := Schema{allow: make(map[string]bool, len(names))}
	for _, n := range names {
		if n == FullName || s.allow[n] {
			continue
		}
		s.allow[n] = true
		s.order = append(s.order, n)
	}
	return s
}

// DefaultSchema merges every aggregated attribute.
func DefaultSchema() Schema {
	return NewSchema(AttributeNames...)
}

// Allows reports whether name is mergeable.
func (s Schema) Allows(name string) bool {
	return s.allow[name]
}

// Names returns the mergeable attributes in declaration order.
func (s Schema) Names() []string {
	return append([]string(nil), s.order...)
}

// MergeResult is a merged copy of a profile and the faults met on the way.
// Faulty attributes contributed nothing; the merge itself still happened.
type MergeResult struct {
	Profile *Profile
	Faults  []fault.Fault
}

// Merge folds orphan into a copy of canonical. canonical itself is never
// modified, so a merge that is computed and then discarded leaves no trace.
//
// List-typed attributes get the orphan's value appended; every other schema
// attribute is treated as a frequency mapping and accumulated. The orphan's
// production joins the production set. Merging the same orphan twice counts
// it twice: callers consume each orphan once.
func Merge(canonical *Profile, orphan Orphan, schema Schema) MergeResult {
	merged := canonical.Clone()
	record := fmt.Sprintf("author %d", canonical.ID)
	var faults []fault.Fault

	for _, name := range schema.order {
		incoming := orphan.Attributes.Get(name)
		current := merged.Attributes.Get(name)

		if current.Kind() == attr.KindList {
			items, _ := current.AsList()
			add, err := incoming.Keys()
			if err != nil {
				faults = append(faults, fault.New(fault.MalformedField, record, name, "%v", err))
				continue
			}
			merged.Attributes[name] = attr.List(append(items, add...)...)
			continue
		}

		if incoming.Kind() == attr.KindAbsent {
			continue
		}
		m := asMergeTarget(current)
		if err := attr.Accumulate(m, incoming); err != nil {
			faults = append(faults, fault.New(fault.MalformedField, record, name, "%v", err))
			continue
		}
		merged.Attributes[name] = attr.Frequency(m)
	}

	merged.AddProduction(orphan.ProductionID)
	return MergeResult{Profile: merged, Faults: faults}
}

// asMergeTarget returns a frequency map to accumulate into. current belongs to
// a cloned profile, so its map may be reused.
func asMergeTarget(current attr.Value) *attr.FreqMap {
	if m, ok := current.AsFrequency(); ok {
		return m
	}
	return attr.AsFreqMap(current).Clone()
}

// FromOrphan starts a new profile from an orphan that matched nobody.
func FromOrphan(id int, orphan Orphan, schema Schema) MergeResult {
	return Merge(NewProfile(id, orphan.DisplayName()), orphan, schema)
}

// Build aggregates the mentions of one known person into a profile. The most
// frequent normalized name becomes the display name.
func Build(id int, mentions []Orphan, schema Schema) MergeResult {
	p := NewProfile(id, "")
	var faults []fault.Fault
	for _, m := range mentions {
		res := Merge(p, m, schema)
		p = res.Profile
		faults = append(faults, res.Faults...)
	}
	if names, ok := p.Attributes.Get(Name).AsFrequency(); ok {
		p.DisplayName = attr.PickMostFrequent(names)
	}
	return MergeResult{Profile: p, Faults: faults}
}
