package attr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNegativeCount is returned when a count below zero is added to a FreqMap.
var ErrNegativeCount = errors.New("negative count")

// FreqMap maps observed values to how many productions exhibited them.
// Keys keep first-seen insertion order, which breaks ties in PickMostFrequent.
type FreqMap struct {
	keys   []string
	counts map[string]int
}

// NewFreqMap returns an empty FreqMap.
func NewFreqMap() *FreqMap {
	return &FreqMap{counts: make(map[string]int)}
}

// FreqMapOf builds a FreqMap from alternating key, count arguments in the given order.
// It panics on malformed arguments and is meant for literals in code and tests.
func FreqMapOf(pairs ...any) *FreqMap {
	if len(pairs)%2 != 0 {
		panic("attr.FreqMapOf: odd number of arguments")
	}
	m := NewFreqMap()
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("attr.FreqMapOf: key %v is not a string", pairs[i]))
		}
		n, ok := pairs[i+1].(int)
		if !ok {
			panic(fmt.Sprintf("attr.FreqMapOf: count %v is not an int", pairs[i+1]))
		}
		if err := m.Add(k, n); err != nil {
			panic(err)
		}
	}
	return m
}

// Add adds n occurrences of key. A new key is appended to the insertion order.
func (m *FreqMap) Add(key string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %q=%d", ErrNegativeCount, key, n)
	}
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	if _, ok := m.counts[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.counts[key] += n
	return nil
}

// Observe records a single occurrence of key.
func (m *FreqMap) Observe(key string) {
	_ = m.Add(key, 1)
}

// Len returns the number of distinct keys.
func (m *FreqMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns keys in insertion order.
func (m *FreqMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Count returns the count for key, 0 if absent.
func (m *FreqMap) Count(key string) int {
	if m == nil {
		return 0
	}
	return m.counts[key]
}

// Has reports whether key was ever observed.
func (m *FreqMap) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.counts[key]
	return ok
}

// Clone returns a deep copy.
func (m *FreqMap) Clone() *FreqMap {
	out := &FreqMap{counts: make(map[string]int, m.Len())}
	if m == nil {
		return out
	}
	out.keys = append([]string(nil), m.keys...)
	for k, v := range m.counts {
		out.counts[k] = v
	}
	return out
}

// Map returns the counts as a plain map.
func (m *FreqMap) Map() map[string]int {
	out := make(map[string]int, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

// Top returns the first key holding the greatest count. Unlike PickMostFrequent
// it does not exclude the missing marker.
func (m *FreqMap) Top() (string, bool) {
	best, bestN := "", -1
	for _, k := range m.Keys() {
		if n := m.counts[k]; n > bestN {
			best, bestN = k, n
		}
	}
	return best, bestN >= 0
}

// String renders the map as a python dict literal, the format the tables use.
func (m *FreqMap) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote(k))
		fmt.Fprintf(&sb, ": %d", m.counts[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}
