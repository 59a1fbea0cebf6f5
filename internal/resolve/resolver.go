package resolve

import (
	"fmt"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/fault"
)

// DefaultMinScore requires a name match plus one agreeing attribute.
const DefaultMinScore = 3

// Options configures a resolution sweep.
type Options struct {
	MinScore int           // merge when the top score is at least this
	Schema   author.Schema // mergeable attributes
	Report   *fault.Report // receives soft faults; may be nil
}

// Action says what happened to an orphan.
type Action string

const (
	ActionMerged  Action = "merged"
	ActionCreated Action = "created"
)

// Decision records the fate of one orphan.
type Decision struct {
	ProductionID int    `json:"production_id"`
	Key          string `json:"key"`
	Action       Action `json:"action"`
	AuthorID     int    `json:"author_id"`
	Score        int    `json:"score"`
	Candidates   int    `json:"candidates"`
	Tied         int    `json:"tied,omitempty"` // other candidates sharing the top score
}

// Summary counts the outcomes of a sweep.
type Summary struct {
	Orphans int `json:"orphans"`
	Merged  int `json:"merged"`
	Created int `json:"created"`
	Ties    int `json:"ties"`
}

// Resolve consumes each orphan exactly once, in order, against base.
//
// The orphan is scored against every profile sharing its first+last name. The
// best candidate wins if it reaches MinScore; on equal scores the lowest author
// ID wins. Otherwise the orphan becomes a new profile, which later orphans can
// match. base is not modified.
func Resolve(base *author.Table, orphans []author.Orphan, opts Options) (*author.Table, []Decision, Summary) {
	b := author.NewBuilder(base)
	idx := NewIndex(base)
	decisions := make([]Decision, 0, len(orphans))
	var sum Summary

	for i, o := range orphans {
		sum.Orphans++
		key := o.FirstLastName()
		if key == "" {
			opts.Report.Add(fault.New(fault.MalformedField, fmt.Sprintf("orphan %d (production %d)", i, o.ProductionID), author.FirstLastName, "missing first+last name"))
		}

		d := Decision{ProductionID: o.ProductionID, Key: key}
		bestID, bestScore, tied := -1, 0, 0
		candidates := idx.Candidates(key)
		d.Candidates = len(candidates)
		for _, id := range candidates {
			p, ok := b.Get(id)
			if !ok {
				continue
			}
			s, err := ScoreChecked(p.Attributes, o.Attributes)
			if err != nil {
				opts.Report.Add(fault.New(fault.MalformedField, fmt.Sprintf("author %d", id), "", "scoring production %d: %v", o.ProductionID, err))
				s = 0
			}
			switch {
			case s > bestScore:
				bestID, bestScore, tied = id, s, 0
			case s == bestScore && s > 0:
				tied++ // candidates are ascending, so the earlier (lower) ID stays
			}
		}

		var res author.MergeResult
		if bestID >= 0 && bestScore >= opts.MinScore {
			p, _ := b.Get(bestID)
			res = author.Merge(p, o, opts.Schema)
			d.Action, d.AuthorID, d.Score, d.Tied = ActionMerged, bestID, bestScore, tied
			sum.Merged++
			if tied > 0 {
				sum.Ties++
			}
		} else {
			res = author.FromOrphan(b.NextID(), o, opts.Schema)
			d.Action, d.AuthorID, d.Score = ActionCreated, res.Profile.ID, bestScore
			sum.Created++
		}
		for _, f := range res.Faults {
			opts.Report.Add(f)
		}
		b.Put(res.Profile)
		idx.Add(res.Profile)
		decisions = append(decisions, d)
	}

	return b.Freeze(), decisions, sum
}
