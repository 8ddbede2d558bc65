package workflow

import (
	"time"
)

// NodeType discriminates the executable kinds of a workflow node.
type NodeType string

const (
	// NodeTrigger supplies externally provided initial data on its output
	// ports. Triggers have no inputs.
	NodeTrigger NodeType = "trigger"
	// NodeTool invokes one registered tool; input ports map to argument
	// names.
	NodeTool NodeType = "tool"
	// NodeAgent runs a full reasoning loop for one agent definition.
	NodeAgent NodeType = "agent"
	// NodeOutput captures its merged input as a result of the run. Outputs
	// have no outgoing edges.
	NodeOutput NodeType = "output"
)

// Node is one vertex of a workflow graph. Ports are declared by name and
// edges may only reference declared ports; nodes with no declaration get the
// single default port.
type Node struct {
	ID      string         `json:"id" yaml:"id"`
	Type    NodeType       `json:"type" yaml:"type"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Inputs  []string       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs []string       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Default port names used when a node declares none.
const (
	DefaultInputPort  = "in"
	DefaultOutputPort = "out"
)

// InputPorts returns the node's declared input ports, falling back to the
// default port for consuming node types.
func (n Node) InputPorts() []string {
	if len(n.Inputs) > 0 {
		return n.Inputs
	}
	if n.Type == NodeTrigger {
		return nil
	}
	return []string{DefaultInputPort}
}

// OutputPorts returns the node's declared output ports, falling back to the
// default port for producing node types.
func (n Node) OutputPorts() []string {
	if len(n.Outputs) > 0 {
		return n.Outputs
	}
	if n.Type == NodeOutput {
		return nil
	}
	return []string{DefaultOutputPort}
}

// Edge connects one output port of a source node to one input port of a
// target node. Port fields left empty refer to the default ports.
type Edge struct {
	Source     string `json:"source" yaml:"source"`
	SourcePort string `json:"source_port,omitempty" yaml:"source_port,omitempty"`
	Target     string `json:"target" yaml:"target"`
	TargetPort string `json:"target_port,omitempty" yaml:"target_port,omitempty"`
}

func (e Edge) sourcePort() string {
	if e.SourcePort == "" {
		return DefaultOutputPort
	}
	return e.SourcePort
}

func (e Edge) targetPort() string {
	if e.TargetPort == "" {
		return DefaultInputPort
	}
	return e.TargetPort
}

// Graph is an immutable workflow definition. Node and edge declaration order
// is significant: it breaks scheduling ties and orders merged inputs.
type Graph struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Node returns the node with the given id, if declared.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeStatus is the lifecycle state of one node within a run.
type NodeStatus string

const (
	StatusPending   NodeStatus = "pending"
	StatusRunning   NodeStatus = "running"
	StatusSucceeded NodeStatus = "succeeded"
	StatusFailed    NodeStatus = "failed"
	StatusSkipped   NodeStatus = "skipped"
)

// RunStatus is the settled outcome of a whole run, judged over the graph's
// output nodes.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// NodeState is the per-node record of a run.
type NodeState struct {
	Status     NodeStatus     `json:"status"`
	Outputs    map[string]any `json:"outputs,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at,omitempty"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
}

// Run is the record of one graph execution. Outputs collects the value
// captured by each output node, keyed by node id; Order lists executed nodes
// in launch order.
type Run struct {
	ID         string                `json:"id"`
	GraphID    string                `json:"graph_id"`
	Status     RunStatus             `json:"status"`
	Nodes      map[string]*NodeState `json:"nodes"`
	Outputs    map[string]any        `json:"outputs,omitempty"`
	Order      []string              `json:"order,omitempty"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
}
