// Package fault records best-effort skips made while processing a batch.
//
// Nothing recorded here aborts a run. A Fault describes one contribution that
// was treated as empty; a Report aggregates them so a run can say how much of
// its input it had to drop, and why.
package fault

import (
	"fmt"
	"sort"
)

// Reason classifies why a contribution was skipped.
type Reason string

const (
	// MalformedField: a value had the wrong shape for its use (scalar where a
	// mapping was expected, negative or fractional count, unknown kind).
	MalformedField Reason = "malformed_field"
	// LookupMiss: a referenced production has no matching production row.
	LookupMiss Reason = "lookup_miss"
	// ParseFault: a literal list or mapping cell could not be parsed.
	ParseFault Reason = "parse_fault"
	// ReplacementCycle: the production-ID replacement table loops.
	ReplacementCycle Reason = "replacement_cycle"
)

// Fault is one skipped contribution.
type Fault struct {
	Reason Reason `json:"reason"`
	Record string `json:"record,omitempty"` // e.g. "author 12", "production 301", "row 7"
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Error lets a Fault travel through error-returning helpers.
func (f Fault) Error() string {
	s := string(f.Reason)
	if f.Record != "" {
		s += " in " + f.Record
	}
	if f.Field != "" {
		s += " field " + f.Field
	}
	if f.Detail != "" {
		s += ": " + f.Detail
	}
	return s
}

// New builds a fault with a formatted detail message.
func New(reason Reason, record, field, format string, args ...any) Fault {
	return Fault{Reason: reason, Record: record, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// Result is the outcome of processing one record: a value, or a skip with its reason.
type Result[T any] struct {
	Value T
	Fault *Fault
}

// OK wraps a successfully produced value.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Skip wraps a skipped record; Value holds the documented empty default.
func Skip[T any](empty T, f Fault) Result[T] {
	return Result[T]{Value: empty, Fault: &f}
}

// Skipped reports whether the record was skipped.
func (r Result[T]) Skipped() bool {
	return r.Fault != nil
}

// DefaultSampleLimit caps how many individual faults a Report keeps.
const DefaultSampleLimit = 20

// Report aggregates faults across a batch. The zero value is ready to use and
// keeps DefaultSampleLimit samples.
type Report struct {
	counts  map[Reason]int
	samples []Fault
	// SampleLimit overrides DefaultSampleLimit when > 0.
	SampleLimit int
	// OnFault, if set, is called for every recorded fault (used for logging).
	OnFault func(Fault)
}

// NewReport returns a report that keeps at most limit samples.
func NewReport(limit int) *Report {
	return &Report{SampleLimit: limit}
}

// Add records a fault.
func (r *Report) Add(f Fault) {
	if r == nil {
		return
	}
	if r.counts == nil {
		r.counts = make(map[Reason]int)
	}
	r.counts[f.Reason]++
	limit := r.SampleLimit
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	if len(r.samples) < limit {
		r.samples = append(r.samples, f)
	}
	if r.OnFault != nil {
		r.OnFault(f)
	}
}

// Take records the fault of a skipped result and returns its value.
func Take[T any](r *Report, res Result[T]) T {
	if res.Fault != nil {
		r.Add(*res.Fault)
	}
	return res.Value
}

// Total returns the number of faults recorded.
func (r *Report) Total() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}

// Count returns the number of faults recorded for one reason.
func (r *Report) Count(reason Reason) int {
	if r == nil {
		return 0
	}
	return r.counts[reason]
}

// Counts returns a copy of the per-reason counts.
func (r *Report) Counts() map[Reason]int {
	out := make(map[Reason]int)
	if r == nil {
		return out
	}
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Samples returns the retained faults in the order they were recorded.
func (r *Report) Samples() []Fault {
	if r == nil {
		return nil
	}
	out := make([]Fault, len(r.samples))
	copy(out, r.samples)
	return out
}

// Summary is the JSON shape of a report.
type Summary struct {
	Total   int            `json:"total"`
	Counts  map[Reason]int `json:"counts"`
	Samples []Fault        `json:"samples,omitempty"`
}

// Summary returns a serializable snapshot of the report.
func (r *Report) Summary() Summary {
	return Summary{Total: r.Total(), Counts: r.Counts(), Samples: r.Samples()}
}

// Reasons returns the recorded reasons, sorted.
func (r *Report) Reasons() []Reason {
	if r == nil {
		return nil
	}
	out := make([]Reason, 0, len(r.counts))
	for k := range r.counts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
