package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

var page = template.Must(template.New("viz").Parse(pageTemplate))

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
	Title  string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force", Title: "Co-authorship graph"}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// cytoscapeLayouts maps layout flags to Cytoscape.js algorithm names.
var cytoscapeLayouts = map[string]string{
	"":       "cose",
	"force":  "cose",
	"circle": "circle",
	"grid":   "grid",
}

type pageData struct {
	Title     string
	Empty     bool
	GraphJSON template.JS
	Layout    string
}

// GenerateHTML renders a self-contained page for graph. An empty graph
// renders a placeholder page instead of an empty canvas.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	layout, ok := cytoscapeLayouts[opts.Layout]
	if !ok {
		return "", fmt.Errorf("invalid layout %q: must be force, circle, or grid", opts.Layout)
	}

	data := pageData{Title: opts.Title, Layout: layout, Empty: graph.IsEmpty()}
	if data.Title == "" {
		data.Title = DefaultOptions().Title
	}
	if !data.Empty {
		graphJSON, err := graph.ToCytoscapeJSON()
		if err != nil {
			return "", err
		}
		data.GraphJSON = template.JS(graphJSON)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; margin: 0; background: #f5f5f5; }
    #cy { width: 100%; height: 100vh; background: white; }
    #author { position: absolute; top: 12px; right: 12px; width: 260px; padding: 8px 12px;
      background: white; border: 1px solid #ccc; font-size: 13px; white-space: pre-line; }
    #author:empty { display: none; }
    .empty { text-align: center; color: #666; padding-top: 40vh; }
  </style>
</head>
<body>
{{- if .Empty}}
  <div class="empty">
    <h2>No graph data</h2>
    <p>No author shares a production with another author. Run resolve first, or lower --min-weight.</p>
  </div>
{{- else}}
  <div id="cy"></div>
  <div id="author"></div>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <script>
    const elements = {{.GraphJSON}};
    const layout = "{{.Layout}}";
    const cy = cytoscape({
      container: document.getElementById('cy'),
      elements: elements,
      style: [
        { selector: 'node', style: {
          'background-color': '#4A90D9', 'label': 'data(label)', 'font-size': '10px',
          'text-valign': 'bottom',
          'width': 'mapData(prodCount, 1, 50, 20, 60)', 'height': 'mapData(prodCount, 1, 50, 20, 60)' } },
        { selector: 'node[authorType="DOCENTE"]', style: { 'background-color': '#E8923A' } },
        { selector: 'node[authorType="DISCENTE"]', style: { 'background-color': '#27AE60' } },
        { selector: 'edge', style: {
          'line-color': '#95A5A6', 'curve-style': 'haystack', 'width': 'mapData(weight, 1, 10, 1, 8)' } }
      ],
      layout: { name: layout, animate: false }
    });

    // Tapping an author lists it with its co-authors; tapping the canvas clears.
    const panel = document.getElementById('author');
    cy.on('tap', function(evt) {
      if (evt.target === cy || !evt.target.isNode()) {
        panel.textContent = '';
        return;
      }
      const a = evt.target.data();
      const lines = [a.label, a.institution, a.authorType, a.researchLine,
        a.prodCount + ' productions, ' + a.degree + ' co-authors', ''];
      evt.target.connectedEdges().forEach(function(e) {
        const other = e.source().id() === a.id ? e.target() : e.source();
        lines.push(other.data('label') + ' (' + e.data('weight') + ')');
      });
      panel.textContent = lines.filter(function(l) { return l !== undefined; }).join('\n');
    });
  </script>
{{- end}}
</body>
</html>`
