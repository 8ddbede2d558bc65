package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/workflow"
)

var _ core.AgentStore = (*AgentCatalog)(nil)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAgentCatalog_PutGetDelete(t *testing.T) {
	c := NewAgentCatalog()
	def := core.AgentDefinition{ID: "researcher", Name: "Researcher", ModelName: "mistral:7b"}
	require.NoError(t, c.Put(def))

	got, err := c.Get("researcher")
	require.NoError(t, err)
	assert.Equal(t, "Researcher", got.Name)

	// The catalog hands out copies.
	got.Name = "Mutated"
	again, err := c.Get("researcher")
	require.NoError(t, err)
	assert.Equal(t, "Researcher", again.Name)

	require.NoError(t, c.Delete("researcher"))
	_, err = c.Get("researcher")
	assert.Error(t, err)
	assert.Error(t, c.Delete("researcher"))
}

func TestAgentCatalog_PutValidation(t *testing.T) {
	c := NewAgentCatalog()
	assert.Error(t, c.Put(core.AgentDefinition{ModelName: "mistral:7b"}), "missing id")
	assert.Error(t, c.Put(core.AgentDefinition{ID: "a1"}), "missing model name")
}

func TestLoadAgentsFile(t *testing.T) {
	path := writeFile(t, "agents.yaml", `
agents:
  - id: researcher
    name: Researcher
    role: web researcher
    backstory: You research topics on the web.
    model_name: mistral:7b
    tools: [web_scraper_tool, generate_pdf_report]
  - id: visionary
    name: Visionary
    role: image analyst
    model_name: llama3.2-vision:11b
    vision: true
`)

	c, err := LoadAgentsFile(path)
	require.NoError(t, err)

	defs := c.List()
	require.Len(t, defs, 2)
	assert.Equal(t, "researcher", defs[0].ID)
	assert.Equal(t, []string{"web_scraper_tool", "generate_pdf_report"}, defs[0].Tools)
	assert.True(t, defs[1].Vision)
}

func TestLoadAgentsFile_RejectsIncompleteAgent(t *testing.T) {
	path := writeFile(t, "agents.yaml", `
agents:
  - id: broken
    name: No Model
`)
	_, err := LoadAgentsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model name")
}

func TestLoadAgentsFile_MissingFile(t *testing.T) {
	_, err := LoadAgentsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkflowCatalog_PutValidates(t *testing.T) {
	c := NewWorkflowCatalog()

	valid := workflow.Graph{
		ID: "research",
		Nodes: []workflow.Node{
			{ID: "source", Type: workflow.NodeTrigger, Outputs: []string{"url"}},
			{ID: "scrape", Type: workflow.NodeTool, Config: map[string]any{"tool": "web_scraper_tool"}, Inputs: []string{"url"}},
			{ID: "result", Type: workflow.NodeOutput},
		},
		Edges: []workflow.Edge{
			{Source: "source", SourcePort: "url", Target: "scrape", TargetPort: "url"},
			{Source: "scrape", Target: "result"},
		},
	}
	require.NoError(t, c.Put(valid))

	got, err := c.Get("research")
	require.NoError(t, err)
	assert.Equal(t, 3, len(got.Nodes))

	cyclic := workflow.Graph{
		ID: "cyclic",
		Nodes: []workflow.Node{
			{ID: "a", Type: workflow.NodeTool, Config: map[string]any{"tool": "t"}},
			{ID: "b", Type: workflow.NodeTool, Config: map[string]any{"tool": "t"}},
		},
		Edges: []workflow.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	}
	assert.Error(t, c.Put(cyclic), "invalid graphs never enter the catalog")
	_, err = c.Get("cyclic")
	assert.Error(t, err)

	assert.Error(t, c.Put(workflow.Graph{}), "missing id")
}

func TestLoadWorkflowsFile(t *testing.T) {
	path := writeFile(t, "workflows.yaml", `
workflows:
  - id: research
    name: Research pipeline
    nodes:
      - id: source
        type: trigger
        outputs: [url]
      - id: scrape
        type: tool
        config:
          tool: web_scraper_tool
        inputs: [url]
      - id: summarize
        type: agent
        config:
          agent_id: researcher
          prompt_prefix: "Summarize this page:"
        inputs: [content]
      - id: result
        type: output
    edges:
      - source: source
        source_port: url
        target: scrape
        target_port: url
      - source: scrape
        target: summarize
        target_port: content
      - source: summarize
        target: result
`)

	c, err := LoadWorkflowsFile(path)
	require.NoError(t, err)

	flows := c.List()
	require.Len(t, flows, 1)
	g := flows[0]
	assert.Equal(t, "Research pipeline", g.Name)
	require.Len(t, g.Nodes, 4)

	node, ok := g.Node("summarize")
	require.True(t, ok)
	assert.Equal(t, workflow.NodeAgent, node.Type)
	assert.Equal(t, "researcher", node.Config["agent_id"])
}

func TestLoadWorkflowsFile_RejectsInvalidGraph(t *testing.T) {
	path := writeFile(t, "workflows.yaml", `
workflows:
  - id: broken
    nodes:
      - id: lone
        type: tool
`)
	_, err := LoadWorkflowsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not name a tool")
}
