// Package viz renders the co-authorship graph as a self-contained HTML page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one author.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	// Tooltip fields
	Institution  string `json:"institution,omitempty"`
	AuthorType   string `json:"authorType,omitempty"`
	ResearchLine string `json:"researchLine,omitempty"`

	// Sizing
	ProdCount int `json:"prodCount"`
	Degree    int `json:"degree"`
}

// Edge joins two authors; Weight is the number of shared productions.
type Edge struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Weight      int    `json:"weight"`
	Productions []int  `json:"productions,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
