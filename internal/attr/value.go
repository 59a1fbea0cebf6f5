// Package attr holds author attribute values and the aggregation rules over them.
//
// A Value is tagged once at ingestion as a Scalar, a frequency mapping or a
// List, so aggregation, scoring and merging branch on the tag instead of
// inspecting shapes at use-time.
package attr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/capesgraph/authormerge/internal/literal"
)

const (
	// Missing is the literal missing-value marker left by the scrape.
	Missing = "nan"
	// Unknown is returned by PickMostFrequent when nothing usable was observed.
	Unknown = "-"
)

// Kind tags the shape of a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindScalar
	KindFrequency
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindScalar:
		return "scalar"
	case KindFrequency:
		return "frequency"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Shape errors.
var (
	ErrUnknownKind = errors.New("unknown value kind")
	ErrWrongShape  = errors.New("wrong value shape")
	ErrBadCount    = errors.New("count is not a non-negative integer")
	ErrNilMap      = errors.New("nil frequency map")
)

// Value is one attribute value. The zero Value is absent.
type Value struct {
	kind   Kind
	scalar string
	freq   *FreqMap
	list   []string
}

// Absent returns the absent value.
func Absent() Value { return Value{} }

// Scalar returns a single observed value.
func Scalar(s string) Value { return Value{kind: KindScalar, scalar: s} }

// Frequency wraps a frequency mapping. A nil map becomes an empty one.
func Frequency(m *FreqMap) Value {
	if m == nil {
		m = NewFreqMap()
	}
	return Value{kind: KindFrequency, freq: m}
}

// List returns an accumulating list value.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

// Kind returns the tag.
func (v Value) Kind() Kind { return v.kind }

// AsScalar returns the scalar payload.
func (v Value) AsScalar() (string, bool) { return v.scalar, v.kind == KindScalar }

// AsFrequency returns the frequency payload.
func (v Value) AsFrequency() (*FreqMap, bool) { return v.freq, v.kind == KindFrequency }

// AsList returns a copy of the list payload.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

// Clone returns a deep copy, so a merged profile never shares storage with its source.
func (v Value) Clone() Value {
	switch v.kind {
	case KindFrequency:
		return Value{kind: KindFrequency, freq: v.freq.Clone()}
	case KindList:
		return List(v.list...)
	default:
		return v
	}
}

// IsEmpty reports whether v carries no usable observation.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindScalar:
		return isBlank(v.scalar)
	case KindFrequency:
		return v.freq.Len() == 0
	case KindList:
		return len(v.list) == 0
	default:
		return true
	}
}

// Keys returns the distinct values v carries, for overlap comparisons.
func (v Value) Keys() ([]string, error) {
	switch v.kind {
	case KindAbsent:
		return nil, nil
	case KindScalar:
		if isBlank(v.scalar) {
			return nil, nil
		}
		return []string{v.scalar}, nil
	case KindFrequency:
		return v.freq.Keys(), nil
	case KindList:
		seen := make(map[string]bool, len(v.list))
		out := make([]string, 0, len(v.list))
		for _, s := range v.list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, v.kind)
	}
}

// String renders v the way a table cell holds it.
func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindFrequency:
		return v.freq.String()
	case KindList:
		parts := make([]string, len(v.list))
		for i, s := range v.list {
			parts[i] = quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// ParseCell tags a raw table cell. Cells that look like dict or list literals
// are parsed as such; anything else is a scalar. Blank and missing cells are
// absent. A cell that looks like a literal but fails to parse returns Absent
// together with the parse error.
func ParseCell(cell string) (Value, error) {
	s := strings.TrimSpace(cell)
	if isBlank(s) {
		return Absent(), nil
	}
	if s[0] != '{' && s[0] != '[' {
		return Scalar(s), nil
	}
	node, err := literal.Parse(s)
	if err != nil {
		return Absent(), err
	}
	return FromLiteral(node)
}

// FromLiteral converts a parsed literal tree to a Value.
func FromLiteral(node any) (Value, error) {
	switch n := node.(type) {
	case nil:
		return Absent(), nil
	case string:
		if isBlank(n) {
			return Absent(), nil
		}
		return Scalar(n), nil
	case int64, float64, bool:
		return Scalar(scalarText(n)), nil
	case []any:
		items := make([]string, 0, len(n))
		for i, item := range n {
			switch item.(type) {
			case []any, *literal.Mapping:
				return Absent(), fmt.Errorf("%w: nested container at list element %d", ErrWrongShape, i)
			}
			items = append(items, scalarText(item))
		}
		return List(items...), nil
	case *literal.Mapping:
		m := NewFreqMap()
		for _, e := range n.Entries {
			switch e.Key.(type) {
			case []any, *literal.Mapping:
				return Absent(), fmt.Errorf("%w: container key", ErrWrongShape)
			}
			key := scalarText(e.Key)
			count, ok := countOf(e.Value)
			if !ok {
				return Absent(), fmt.Errorf("%w: %q=%v", ErrBadCount, key, e.Value)
			}
			_ = m.Add(key, count)
		}
		return Frequency(m), nil
	default:
		return Absent(), fmt.Errorf("%w: %T", ErrWrongShape, node)
	}
}

func countOf(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), n >= 0
	case float64:
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func scalarText(v any) string {
	switch n := v.(type) {
	case nil:
		return Missing
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		if math.IsNaN(n) {
			return Missing
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		if n {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(n)
	}
}

func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == Missing
}
