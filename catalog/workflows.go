package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/AlpaslanErdag/Orchestrator/workflow"
)

// WorkflowCatalog holds workflow graphs by id. Graphs are validated on Put,
// so everything served by the catalog is executable. Safe for concurrent
// use.
type WorkflowCatalog struct {
	mu    sync.RWMutex
	flows map[string]workflow.Graph
}

// NewWorkflowCatalog constructs an empty catalog.
func NewWorkflowCatalog() *WorkflowCatalog {
	return &WorkflowCatalog{flows: make(map[string]workflow.Graph)}
}

// workflowsFile is the YAML document shape: a top-level workflows list.
type workflowsFile struct {
	Workflows []workflow.Graph `yaml:"workflows"`
}

// LoadWorkflowsFile reads workflow graphs from a YAML file into a new
// catalog, rejecting any graph that fails validation.
func LoadWorkflowsFile(path string) (*WorkflowCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflows file: %w", err)
	}

	var file workflowsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse workflows file %s: %w", path, err)
	}

	c := NewWorkflowCatalog()
	for i := range file.Workflows {
		if err := c.Put(file.Workflows[i]); err != nil {
			return nil, fmt.Errorf("workflows file %s: %w", path, err)
		}
	}
	return c, nil
}

// Get returns the graph with the given id.
func (c *WorkflowCatalog) Get(id string) (*workflow.Graph, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.flows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %q not found", id)
	}
	return &g, nil
}

// Put validates and stores (or replaces) a graph.
func (c *WorkflowCatalog) Put(g workflow.Graph) error {
	if g.ID == "" {
		return fmt.Errorf("workflow graph has no id")
	}
	if err := workflow.Validate(&g); err != nil {
		return fmt.Errorf("workflow %q: %w", g.ID, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flows[g.ID] = g
	return nil
}

// Delete removes a graph by id.
func (c *WorkflowCatalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.flows[id]; !ok {
		return fmt.Errorf("workflow %q not found", id)
	}
	delete(c.flows, id)
	return nil
}

// List returns all graphs sorted by id.
func (c *WorkflowCatalog) List() []workflow.Graph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]workflow.Graph, 0, len(c.flows))
	for _, g := range c.flows {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
