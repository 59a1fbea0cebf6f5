package attr

import "fmt"

// Accumulate adds one observation into m.
//
// A frequency observation adds each of its counts. A scalar is promoted to a
// one-entry mapping and counts once, unless it is blank or the missing marker,
// so a column that holds plain strings in one source and mappings in another
// still sums. Absent observations are a no-op.
// A list, or a value of unknown kind, is the wrong shape: m is left untouched
// and the error describes the fault so the caller can record it.
//
// Accumulation is addition of counts, so the resulting counts do not depend on
// the order observations arrive in. Only the key order (used for tie-breaks)
// reflects arrival.
func Accumulate(m *FreqMap, obs Value) error {
	if m == nil {
		return ErrNilMap
	}
	switch obs.kind {
	case KindAbsent:
		return nil
	case KindScalar:
		if isBlank(obs.scalar) {
			return nil
		}
		m.Observe(obs.scalar)
		return nil
	case KindFrequency:
		for _, k := range obs.freq.Keys() {
			// counts inside a FreqMap are non-negative by construction
			_ = m.Add(k, obs.freq.Count(k))
		}
		return nil
	case KindList:
		return fmt.Errorf("%w: list where frequency mapping expected", ErrWrongShape)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, obs.kind)
	}
}

// Aggregate folds a sequence of observations into a new FreqMap. Observations
// that fail to accumulate contribute nothing; their errors are returned with
// their index so the batch can carry on.
func Aggregate(observations []Value) (*FreqMap, []IndexedError) {
	m := NewFreqMap()
	var errs []IndexedError
	for i, obs := range observations {
		if err := Accumulate(m, obs); err != nil {
			errs = append(errs, IndexedError{Index: i, Err: err})
		}
	}
	return m, errs
}

// IndexedError ties an aggregation error to the observation that caused it.
type IndexedError struct {
	Index int
	Err   error
}

func (e IndexedError) Error() string {
	return fmt.Sprintf("observation %d: %v", e.Index, e.Err)
}

func (e IndexedError) Unwrap() error { return e.Err }

// PickMostFrequent returns the key with the strictly greatest count, ties going
// to the key seen first. The missing marker never wins. Unknown is returned for
// an empty map or one holding only the missing marker.
func PickMostFrequent(m *FreqMap) string {
	best, bestN := "", -1
	for _, k := range m.Keys() {
		if k == Missing {
			continue
		}
		if n := m.Count(k); n > bestN {
			best, bestN = k, n
		}
	}
	if bestN < 0 {
		return Unknown
	}
	return best
}

// PickByPriority returns the first entry of priority present in m. It ignores
// counts: a rarer but higher-ranked value wins.
func PickByPriority(priority []string, m *FreqMap) (string, bool) {
	for _, p := range priority {
		if m.Has(p) {
			return p, true
		}
	}
	return "", false
}

// Pick resolves a Value to one display string: most frequent for mappings,
// the value itself for scalars, Unknown otherwise.
func Pick(v Value) string {
	switch v.kind {
	case KindFrequency:
		return PickMostFrequent(v.freq)
	case KindScalar:
		if isBlank(v.scalar) {
			return Unknown
		}
		return v.scalar
	case KindList:
		m, _ := Aggregate(scalars(v.list))
		return PickMostFrequent(m)
	default:
		return Unknown
	}
}

// AsFreqMap views any value as a frequency mapping: a mapping as itself, a
// scalar as a single observation, a list as one observation per element.
func AsFreqMap(v Value) *FreqMap {
	switch v.kind {
	case KindFrequency:
		return v.freq
	case KindList:
		m, _ := Aggregate(scalars(v.list))
		return m
	default:
		m := NewFreqMap()
		_ = Accumulate(m, v)
		return m
	}
}

func scalars(items []string) []Value {
	out := make([]Value, len(items))
	for i, s := range items {
		out[i] = Scalar(s)
	}
	return out
}
