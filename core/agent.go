package core

import "time"

// AgentDefinition describes one autonomous agent: its identity, the model it
// is bound to, its system prompt material and the tools it may call.
//
// A definition is immutable for the duration of a run. The owning management
// layer may replace it between runs; the core never mutates it.
type AgentDefinition struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Role      string   `json:"role" yaml:"role"`
	Backstory string   `json:"backstory,omitempty" yaml:"backstory,omitempty"`
	ModelName string   `json:"model_name" yaml:"model_name"`
	Tools     []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	Vision    bool     `json:"vision,omitempty" yaml:"vision,omitempty"`
}

// HasTool reports whether the named tool appears in the agent's allow-list.
func (d AgentDefinition) HasTool(name string) bool {
	for _, t := range d.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// AgentStore resolves agent definitions by id. Definitions are loaded and
// persisted by collaborators outside the core; the store is read-only during
// a run.
type AgentStore interface {
	// Get returns the definition for id or an error if it is unknown.
	Get(id string) (*AgentDefinition, error)
}

// TaskLog summarizes one completed Orchestrator run for external persistence.
// The core only ever appends logs through a TaskLogStore collaborator.
type TaskLog struct {
	ID             string    `json:"id"`
	AgentID        string    `json:"agent_id"`
	InputQuery     string    `json:"input_query"`
	ThoughtProcess string    `json:"thought_process"`
	FinalOutput    string    `json:"final_output"`
	ArtifactPath   string    `json:"artifact_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TaskLogStore records completed run summaries. Implementations must be safe
// for concurrent use; the loop writes at most one log per run.
type TaskLogStore interface {
	Append(log TaskLog) error
}
