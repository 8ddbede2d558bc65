package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

func validGraph() *Graph {
	return &Graph{
		ID: "g1",
		Nodes: []Node{
			{ID: "source", Type: NodeTrigger, Outputs: []string{"url"}},
			{ID: "scrape", Type: NodeTool, Config: map[string]any{"tool": "web_scraper_tool"}, Inputs: []string{"url"}},
			{ID: "result", Type: NodeOutput},
		},
		Edges: []Edge{
			{Source: "source", SourcePort: "url", Target: "scrape", TargetPort: "url"},
			{Source: "scrape", Target: "result"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(validGraph()))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Graph)
		want   string
	}{
		{
			name:   "empty graph",
			mutate: func(g *Graph) { g.Nodes = nil; g.Edges = nil },
			want:   "no nodes",
		},
		{
			name:   "duplicate node id",
			mutate: func(g *Graph) { g.Nodes = append(g.Nodes, Node{ID: "scrape", Type: NodeOutput}) },
			want:   "duplicate node id",
		},
		{
			name:   "unknown node type",
			mutate: func(g *Graph) { g.Nodes[1].Type = "mystery" },
			want:   "unknown type",
		},
		{
			name:   "tool node without tool",
			mutate: func(g *Graph) { g.Nodes[1].Config = nil },
			want:   "does not name a tool",
		},
		{
			name: "agent node without agent id",
			mutate: func(g *Graph) {
				g.Nodes = append(g.Nodes, Node{ID: "a", Type: NodeAgent})
			},
			want: "does not name an agent",
		},
		{
			name: "dangling edge source",
			mutate: func(g *Graph) {
				g.Edges = append(g.Edges, Edge{Source: "ghost", Target: "result"})
			},
			want: "unknown source node",
		},
		{
			name: "dangling edge target",
			mutate: func(g *Graph) {
				g.Edges = append(g.Edges, Edge{Source: "scrape", Target: "ghost"})
			},
			want: "unknown target node",
		},
		{
			name: "undeclared source port",
			mutate: func(g *Graph) {
				g.Edges[0].SourcePort = "nope"
			},
			want: "undeclared output port",
		},
		{
			name: "undeclared target port",
			mutate: func(g *Graph) {
				g.Edges[0].TargetPort = "nope"
			},
			want: "undeclared input port",
		},
		{
			name: "edge into trigger",
			mutate: func(g *Graph) {
				g.Edges = append(g.Edges, Edge{Source: "scrape", Target: "source", TargetPort: "url"})
			},
			want: "cannot have incoming edges",
		},
		{
			name: "edge out of output",
			mutate: func(g *Graph) {
				g.Edges = append(g.Edges, Edge{Source: "result", Target: "scrape", TargetPort: "url"})
			},
			want: "cannot have outgoing edges",
		},
		{
			name: "cycle",
			mutate: func(g *Graph) {
				g.Nodes = append(g.Nodes,
					Node{ID: "a", Type: NodeTool, Config: map[string]any{"tool": "t"}},
					Node{ID: "b", Type: NodeTool, Config: map[string]any{"tool": "t"}},
				)
				g.Edges = append(g.Edges,
					Edge{Source: "a", SourcePort: "out", Target: "b", TargetPort: "in"},
					Edge{Source: "b", SourcePort: "out", Target: "a", TargetPort: "in"},
				)
			},
			want: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGraph()
			tt.mutate(g)
			err := Validate(g)
			require.Error(t, err)

			var vErr *core.GraphValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNodePortDefaults(t *testing.T) {
	tool := Node{ID: "t", Type: NodeTool}
	assert.Equal(t, []string{"in"}, tool.InputPorts())
	assert.Equal(t, []string{"out"}, tool.OutputPorts())

	trigger := Node{ID: "s", Type: NodeTrigger}
	assert.Nil(t, trigger.InputPorts())
	assert.Equal(t, []string{"out"}, trigger.OutputPorts())

	output := Node{ID: "o", Type: NodeOutput}
	assert.Equal(t, []string{"in"}, output.InputPorts())
	assert.Nil(t, output.OutputPorts())
}
