package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

// AgentCatalog is an in-memory core.AgentStore holding agent definitions,
// typically loaded from a YAML file at startup. Safe for concurrent use.
type AgentCatalog struct {
	mu     sync.RWMutex
	agents map[string]core.AgentDefinition
}

// NewAgentCatalog constructs an empty catalog.
func NewAgentCatalog() *AgentCatalog {
	return &AgentCatalog{agents: make(map[string]core.AgentDefinition)}
}

// agentsFile is the YAML document shape: a top-level agents list.
type agentsFile struct {
	Agents []core.AgentDefinition `yaml:"agents"`
}

// LoadAgentsFile reads agent definitions from a YAML file into a new
// catalog. Every definition must carry an id and a model name.
func LoadAgentsFile(path string) (*AgentCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}

	var file agentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse agents file %s: %w", path, err)
	}

	c := NewAgentCatalog()
	for _, def := range file.Agents {
		if err := c.Put(def); err != nil {
			return nil, fmt.Errorf("agents file %s: %w", path, err)
		}
	}
	return c, nil
}

// Get implements core.AgentStore.
func (c *AgentCatalog) Get(id string) (*core.AgentDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %q not found", id)
	}
	return &def, nil
}

// Put stores (or replaces) a definition after checking its required fields.
func (c *AgentCatalog) Put(def core.AgentDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("agent definition has no id")
	}
	if def.ModelName == "" {
		return fmt.Errorf("agent %q has no model name", def.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents[def.ID] = def
	return nil
}

// Delete removes a definition by id.
func (c *AgentCatalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.agents[id]; !ok {
		return fmt.Errorf("agent %q not found", id)
	}
	delete(c.agents, id)
	return nil
}

// List returns all definitions sorted by id.
func (c *AgentCatalog) List() []core.AgentDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.AgentDefinition, 0, len(c.agents))
	for _, def := range c.agents {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
