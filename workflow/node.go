package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
	"github.com/AlpaslanErdag/Orchestrator/orchestrator"
	"github.com/AlpaslanErdag/Orchestrator/tool"
)

// executeNode runs one node and returns its per-port outputs. inputs holds
// the merged value per input port; external carries trigger data injected by
// the caller for this node id. The type switch is closed: Validate has
// already rejected unknown node types.
func (e *Engine) executeNode(
	ctx context.Context,
	node Node,
	inputs map[string]any,
	external map[string]any,
	emitter *core.Emitter,
) (map[string]any, error) {
	switch node.Type {
	case NodeTrigger:
		return e.executeTrigger(node, external)
	case NodeTool:
		return e.executeTool(ctx, node, inputs, emitter)
	case NodeAgent:
		return e.executeAgent(ctx, node, inputs, emitter)
	case NodeOutput:
		return e.executeOutput(node, inputs)
	default:
		return nil, core.NewNodeExecutionError(node.ID, fmt.Errorf("unknown node type %q", node.Type))
	}
}

// executeTrigger projects the node's config, overlaid with externally
// supplied data, onto its output ports.
func (e *Engine) executeTrigger(node Node, external map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(node.Config)+len(external))
	for k, v := range node.Config {
		merged[k] = v
	}
	for k, v := range external {
		merged[k] = v
	}
	return portOutputs(node.OutputPorts(), merged), nil
}

// executeTool invokes the configured tool with static config args overlaid
// by the values arriving on its input ports (port name = argument name).
func (e *Engine) executeTool(
	ctx context.Context,
	node Node,
	inputs map[string]any,
	emitter *core.Emitter,
) (map[string]any, error) {
	name, _ := node.Config["tool"].(string)
	static, _ := node.Config["args"].(map[string]any)

	args, err := mergeArgs(static, inputs)
	if err != nil {
		return nil, core.NewNodeExecutionError(node.ID, err)
	}

	argsJSON, _ := xjson.Marshal(args)
	if err := emitter.Emit(ctx, core.StageActing, node.ID,
		fmt.Sprintf("Executing tool: %s\nArgs: %s", name, argsJSON)); err != nil {
		return nil, wrapSinkErr(node.ID, err)
	}

	result := e.registry.Invoke(ctx, name, args)
	e.metrics.ToolInvocation(name, result.Success)
	if !result.Success {
		return nil, core.NewNodeExecutionError(node.ID,
			&tool.ToolError{Tool: name, Message: result.Error, Code: result.Code})
	}

	if err := emitter.Emit(ctx, core.StageObservation, node.ID, observationText(result)); err != nil {
		return nil, wrapSinkErr(node.ID, err)
	}

	outputs := portOutputs(node.OutputPorts(), result.Payload)
	if result.ArtifactPath != "" {
		outputs["artifact_path"] = result.ArtifactPath
	}
	return outputs, nil
}

// executeAgent renders the merged inputs into a task and runs the full
// reasoning loop for the configured agent. The loop shares the run's emitter
// so its events interleave into the same ordered trace, tagged with this
// node's id.
func (e *Engine) executeAgent(
	ctx context.Context,
	node Node,
	inputs map[string]any,
	emitter *core.Emitter,
) (map[string]any, error) {
	agentID, _ := node.Config["agent_id"].(string)
	def, err := e.agents.Get(agentID)
	if err != nil {
		return nil, core.NewNodeExecutionError(node.ID, fmt.Errorf("resolve agent %q: %w", agentID, err))
	}

	task := renderTask(node, inputs)
	imageURL, _ := inputs["image_url"].(string)

	result, err := e.orchestrator.Run(ctx, *def, task, nil, func(o *orchestrator.RunOptions) {
		o.RunID = emitter.RunID()
		o.NodeID = node.ID
		o.Emitter = emitter
		o.ImageURL = imageURL
	})
	if err != nil {
		return nil, core.NewNodeExecutionError(node.ID, err)
	}

	outputs := portOutputs(node.OutputPorts(), result.FinalAnswer)
	if result.ArtifactPath != "" {
		outputs["artifact_path"] = result.ArtifactPath
	}
	return outputs, nil
}

// executeOutput captures the merged input value; the engine lifts it into
// the run's Outputs map.
func (e *Engine) executeOutput(node Node, inputs map[string]any) (map[string]any, error) {
	values := make([]any, 0, len(inputs))
	for _, p := range node.InputPorts() {
		if v, ok := inputs[p]; ok {
			values = append(values, v)
		}
	}
	value, err := mergePortValues(values)
	if err != nil {
		return nil, core.NewNodeExecutionError(node.ID, err)
	}
	return map[string]any{outputValueKey: value}, nil
}

// outputValueKey is the internal port under which an output node stores its
// captured value.
const outputValueKey = "value"

// renderTask builds the task text for an agent node: an optional configured
// prompt prefix followed by the values arriving on its input ports, in
// declared port order.
func renderTask(node Node, inputs map[string]any) string {
	var parts []string
	if prefix, _ := node.Config["prompt_prefix"].(string); prefix != "" {
		parts = append(parts, prefix)
	}
	for _, p := range node.InputPorts() {
		if p == "image_url" {
			continue
		}
		if s := stringify(inputs[p]); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		if task, _ := node.Config["task"].(string); task != "" {
			return task
		}
	}
	return strings.Join(parts, "\n\n")
}

// portOutputs projects a produced value onto a node's declared output ports.
// A map value feeds ports by key where the key exists; otherwise every port
// carries the whole value.
func portOutputs(ports []string, value any) map[string]any {
	out := make(map[string]any, len(ports))
	m, isMap := value.(map[string]any)
	for _, p := range ports {
		if isMap {
			if v, ok := m[p]; ok {
				out[p] = v
				continue
			}
		}
		out[p] = value
	}
	return out
}

// observationText flattens a successful tool result for the event trace.
func observationText(result tool.Result) string {
	switch p := result.Payload.(type) {
	case string:
		return p
	case tool.ArtifactPayload:
		return p.Message
	case nil:
		return "SUCCESS"
	default:
		if b, err := xjson.Marshal(p); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", p)
	}
}

// wrapSinkErr marks a rejected event publication as cancellation: a gone
// consumer stops the run rather than failing a single node.
func wrapSinkErr(nodeID string, err error) error {
	if errors.Is(err, core.ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: event sink rejected event for node %s: %v", core.ErrCancelled, nodeID, err)
}
