package core

import (
	"errors"
	"fmt"
)

// ErrCancelled marks a run that was stopped by caller cancellation or a
// disconnected event consumer rather than by its own logic.
var ErrCancelled = errors.New("run cancelled")

// GatewayError reports a model endpoint that was unreachable, timed out or
// returned unusable output. Fatal to the current Orchestrator run.
type GatewayError struct {
	Model string
	Err   error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (model %s): %v", e.Model, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError wraps err as a GatewayError for the named model.
func NewGatewayError(model string, err error) *GatewayError {
	return &GatewayError{Model: model, Err: err}
}

// IterationLimitError reports an Orchestrator run that exhausted its step
// budget without reaching DONE.
type IterationLimitError struct {
	AgentID string
	Limit   int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("agent %s exceeded iteration limit of %d without a final answer", e.AgentID, e.Limit)
}

// MalformedToolCallError reports a tool call that could not be repaired after
// the single corrective retry.
type MalformedToolCallError struct {
	AgentID string
	Raw     string
	Cause   error
}

func (e *MalformedToolCallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("agent %s emitted a malformed tool call: %v", e.AgentID, e.Cause)
	}
	return fmt.Sprintf("agent %s emitted a malformed tool call", e.AgentID)
}

func (e *MalformedToolCallError) Unwrap() error { return e.Cause }

// GraphValidationError rejects a structurally invalid workflow before any
// node executes.
type GraphValidationError struct {
	Reason string
}

func (e *GraphValidationError) Error() string {
	return fmt.Sprintf("invalid workflow graph: %s", e.Reason)
}

// NewGraphValidationError builds a GraphValidationError from a format string.
func NewGraphValidationError(format string, args ...any) *GraphValidationError {
	return &GraphValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NodeExecutionError reports a workflow node that failed at runtime. It fails
// only that node; dependents are skipped, independent branches continue.
type NodeExecutionError struct {
	NodeID string
	Stage  Stage
	Err    error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s failed: %v", e.NodeID, e.Err)
}

func (e *NodeExecutionError) Unwrap() error { return e.Err }

// NewNodeExecutionError wraps err as a NodeExecutionError for node id.
func NewNodeExecutionError(nodeID string, err error) *NodeExecutionError {
	return &NodeExecutionError{NodeID: nodeID, Err: err}
}
