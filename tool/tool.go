// Package tool implements the tool-calling subsystem: the Tool contract,
// a generic FunctionTool adapter and the Registry that validates arguments
// against descriptor schemas and converts every underlying fault into a
// structured Result instead of letting it escape.
package tool

import (
	"context"
	"fmt"

	"github.com/AlpaslanErdag/Orchestrator/internal/util"
)

// Tool defines the contract for a callable agent capability.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define a proper JSON schema for parameters
//   - Handle errors gracefully and honor ctx cancellation
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is exposed to the model to guide tool selection.
	Description() string

	// Parameters returns a minimal JSON schema describing the expected
	// arguments. It is used both for validation and for the model's tool
	// declarations.
	Parameters() map[string]interface{}

	// Call executes the tool with validated arguments. The returned value
	// must be JSON-serializable.
	Call(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Descriptor is the read-only description of a registered tool handed to
// callers of Describe / ListAllowed.
type Descriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Error codes attached to Result and ToolError.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
	CodeUnknownTool = "UNKNOWN_TOOL"
	CodeTimeout     = "TIMEOUT"
)

// Result is the uniform outcome of a registry invocation. A failed
// invocation never escapes as a Go error from Invoke; it is reported here so
// the model can observe and recover.
type Result struct {
	Success      bool        `json:"success"`
	Code         string      `json:"code,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	Error        string      `json:"error,omitempty"`
	ArtifactPath string      `json:"artifact_path,omitempty"`
}

// ArtifactPayload marks a tool payload that produced a file on disk. The
// registry lifts Path into Result.ArtifactPath so callers can track the last
// produced artifact without inspecting payload shapes.
type ArtifactPayload struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string      `json:"tool"`              // Name of the tool that failed
	Message string      `json:"message"`           // Error message
	Code    string      `json:"code"`              // Error code for categorization
	Details interface{} `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
