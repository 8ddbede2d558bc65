package workflow

import (
	"github.com/AlpaslanErdag/Orchestrator/core"
)

var validNodeTypes = map[NodeType]bool{
	NodeTrigger: true,
	NodeTool:    true,
	NodeAgent:   true,
	NodeOutput:  true,
}

// Validate checks the whole graph before anything runs: node identities,
// per-type configuration, edge endpoints, declared ports and acyclicity. A
// graph that fails any check is rejected completely; no node of an invalid
// graph is ever executed.
func Validate(g *Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return core.NewGraphValidationError("graph has no nodes")
	}

	byID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return core.NewGraphValidationError("node with empty id")
		}
		if _, dup := byID[n.ID]; dup {
			return core.NewGraphValidationError("duplicate node id %q", n.ID)
		}
		if !validNodeTypes[n.Type] {
			return core.NewGraphValidationError("node %q has unknown type %q", n.ID, n.Type)
		}
		if err := validateConfig(n); err != nil {
			return err
		}
		byID[n.ID] = n
	}

	indegree := make(map[string]int, len(g.Nodes))
	adjacency := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		src, ok := byID[e.Source]
		if !ok {
			return core.NewGraphValidationError("edge references unknown source node %q", e.Source)
		}
		dst, ok := byID[e.Target]
		if !ok {
			return core.NewGraphValidationError("edge references unknown target node %q", e.Target)
		}
		if src.Type == NodeOutput {
			return core.NewGraphValidationError("output node %q cannot have outgoing edges", e.Source)
		}
		if dst.Type == NodeTrigger {
			return core.NewGraphValidationError("trigger node %q cannot have incoming edges", e.Target)
		}
		if !hasPort(src.OutputPorts(), e.sourcePort()) {
			return core.NewGraphValidationError("edge %s -> %s references undeclared output port %q on %q",
				e.Source, e.Target, e.sourcePort(), e.Source)
		}
		if !hasPort(dst.InputPorts(), e.targetPort()) {
			return core.NewGraphValidationError("edge %s -> %s references undeclared input port %q on %q",
				e.Source, e.Target, e.targetPort(), e.Target)
		}
		indegree[e.Target]++
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	// Kahn's algorithm; anything left unprocessed sits on a cycle.
	queue := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, next := range adjacency[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if processed != len(g.Nodes) {
		return core.NewGraphValidationError("graph contains a cycle")
	}

	return nil
}

// validateConfig enforces the per-type configuration a node needs to be
// executable, so the engine never discovers a missing binding mid-run.
func validateConfig(n Node) error {
	switch n.Type {
	case NodeTool:
		if s, _ := n.Config["tool"].(string); s == "" {
			return core.NewGraphValidationError("tool node %q does not name a tool", n.ID)
		}
	case NodeAgent:
		if s, _ := n.Config["agent_id"].(string); s == "" {
			return core.NewGraphValidationError("agent node %q does not name an agent", n.ID)
		}
	}
	return nil
}

func hasPort(ports []string, name string) bool {
	for _, p := range ports {
		if p == name {
			return true
		}
	}
	return false
}
