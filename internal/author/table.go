package author

import "sort"

// Table is an immutable snapshot of the author table, ordered by profile ID.
// Stages never modify a Table; they build a new one.
type Table struct {
	profiles []*Profile
	byID     map[int]int
}

// NewTable builds a snapshot from profiles. Profiles are cloned, so later
// changes by the caller do not leak in. A duplicate ID keeps the last profile.
func NewTable(profiles ...*Profile) *Table {
	b := NewBuilder(nil)
	for _, p := range profiles {
		b.Put(p.Clone())
	}
	return b.Freeze()
}

// Len returns the number of profiles.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.profiles)
}

// Profiles returns the profiles in ID order. Callers must treat them as read-only.
func (t *Table) Profiles() []*Profile {
	if t == nil {
		return nil
	}
	return append([]*Profile(nil), t.profiles...)
}

// Get returns the profile with the given ID.
func (t *Table) Get(id int) (*Profile, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return t.profiles[i], true
}

// NextID returns one past the largest ID in the table.
func (t *Table) NextID() int {
	if t.Len() == 0 {
		return 0
	}
	return t.profiles[len(t.profiles)-1].ID + 1
}

// Assignment returns author ID → production IDs.
func (t *Table) Assignment() map[int][]int {
	out := make(map[int][]int, t.Len())
	for _, p := range t.Profiles() {
		out[p.ID] = append([]int(nil), p.ProductionIDs...)
	}
	return out
}

// Builder accumulates profiles for a new Table. It has a single writer.
type Builder struct {
	profiles map[int]*Profile
	next     int
}

// NewBuilder starts from base (which is not modified). base may be nil.
func NewBuilder(base *Table) *Builder {
	b := &Builder{profiles: make(map[int]*Profile, base.Len())}
	for _, p := range base.Profiles() {
		b.profiles[p.ID] = p
	}
	b.next = base.NextID()
	return b
}

// Get returns the current version of a profile.
func (b *Builder) Get(id int) (*Profile, bool) {
	p, ok := b.profiles[id]
	return p, ok
}

// Put stores p, replacing any profile with the same ID.
func (b *Builder) Put(p *Profile) {
	b.profiles[p.ID] = p
	if p.ID >= b.next {
		b.next = p.ID + 1
	}
}

// NextID reserves and returns a fresh ID.
func (b *Builder) NextID() int {
	id := b.next
	b.next++
	return id
}

// Len returns the number of profiles.
func (b *Builder) Len() int {
	return len(b.profiles)
}

// Freeze returns the snapshot. The builder must not be used afterwards.
func (b *Builder) Freeze() *Table {
	t := &Table{
		profiles: make([]*Profile, 0, len(b.profiles)),
		byID:     make(map[int]int, len(b.profiles)),
	}
	for _, p := range b.profiles {
		t.profiles = append(t.profiles, p)
	}
	sort.Slice(t.profiles, func(i, j int) bool { return t.profiles[i].ID < t.profiles[j].ID })
	for i, p := range t.profiles {
		t.byID[p.ID] = i
	}
	return t
}
