package viz

import (
	"strconv"

	"github.com/capesgraph/authormerge/internal/author"
	"github.com/capesgraph/authormerge/internal/coauthor"
	"github.com/capesgraph/authormerge/internal/pipeline"
)

// GraphOptions filters what ends up in the graph.
type GraphOptions struct {
	MinWeight    int  // drop pairs sharing fewer productions
	KeepIsolated bool // keep authors with no remaining edge
}

// BuildGraph turns formatted authors and per-pair collaborations into graph
// data. Nodes keep row order. One edge is drawn per pair and repeated
// co-authorship shows as weight.
func BuildGraph(rows []pipeline.Row, collabs []coauthor.Collaboration, opts GraphOptions) *GraphData {
	var edges []Edge
	degree := make(map[int]int)
	for _, c := range collabs {
		if c.Count < opts.MinWeight {
			continue
		}
		degree[c.A]++
		degree[c.B]++
		edges = append(edges, Edge{
			Source:      nodeID(c.A),
			Target:      nodeID(c.B),
			Weight:      c.Count,
			Productions: c.Productions,
		})
	}

	nodes := make([]Node, 0, len(rows))
	for _, r := range rows {
		if !opts.KeepIsolated && degree[r.ID] == 0 {
			continue
		}
		nodes = append(nodes, newAuthorNode(r, degree[r.ID]))
	}

	return &GraphData{Nodes: nodes, Edges: edges}
}

func newAuthorNode(r pipeline.Row, degree int) Node {
	label := r.Name()
	if label == "" {
		label = nodeID(r.ID)
	}
	return Node{
		ID:           nodeID(r.ID),
		Label:        label,
		Institution:  r.Columns[author.Institution],
		AuthorType:   r.Columns[author.Type],
		ResearchLine: r.ResearchLine,
		ProdCount:    r.ProdCount(),
		Degree:       degree,
	}
}

func nodeID(idx int) string {
	return "a" + strconv.Itoa(idx)
}
