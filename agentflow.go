// Package agentflow provides a high-level façade over the agent execution
// loop and the workflow engine, enabling rapid construction of local agent
// platforms. Most applications interact with this package by:
//  1. Creating an AgentFlow via New() (optionally overriding the model
//     gateway, stores and logger)
//  2. Registering tools, agent definitions and workflow graphs
//  3. Running agents directly (RunAgent) or whole workflows (RunWorkflow)
//     with an event sink for streaming
//
// The façade delegates the reasoning loop to the orchestrator package and
// DAG execution to the workflow package while keeping setup concise. All
// defaults are safe for local development against an Ollama endpoint;
// production deployments typically supply durable stores and a structured
// logger.
package agentflow

import (
	"context"

	"github.com/AlpaslanErdag/Orchestrator/catalog"
	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/logging"
	"github.com/AlpaslanErdag/Orchestrator/metrics"
	"github.com/AlpaslanErdag/Orchestrator/model"
	"github.com/AlpaslanErdag/Orchestrator/model/openai"
	"github.com/AlpaslanErdag/Orchestrator/orchestrator"
	"github.com/AlpaslanErdag/Orchestrator/tasklog"
	"github.com/AlpaslanErdag/Orchestrator/tool"
	"github.com/AlpaslanErdag/Orchestrator/workflow"
)

// Options configures the AgentFlow instance.
type Options struct {
	// Gateway is the model endpoint; defaults to an OpenAI-compatible
	// gateway pointed at a local Ollama.
	Gateway model.Gateway

	// Registry holds the callable tools; defaults to an empty registry with
	// the standard aliases.
	Registry *tool.Registry

	// TaskLogs receives completed run summaries; defaults to an in-memory
	// store.
	TaskLogs core.TaskLogStore

	// Metrics receives platform counters. Nil disables metrics.
	Metrics *metrics.Metrics

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// LoopOptions tune the reasoning loop (iteration cap, timeouts).
	LoopOptions []func(o *orchestrator.Options)

	// EngineOptions tune the workflow engine (parallelism).
	EngineOptions []func(o *workflow.Options)
}

// AgentFlow is the high-level façade aggregating the loop, the engine and
// the catalogs.
type AgentFlow struct {
	registry  *tool.Registry
	agents    *catalog.AgentCatalog
	workflows *catalog.WorkflowCatalog
	loop      *orchestrator.Orchestrator
	engine    *workflow.Engine
}

// New creates a new AgentFlow instance with optional overrides. Any unset
// service is initialized with a local or in-memory implementation.
func New(optFns ...func(o *Options)) *AgentFlow {
	opts := Options{
		Registry: tool.NewRegistry(),
		TaskLogs: tasklog.NewInMemoryStore(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Gateway == nil {
		opts.Gateway = openai.NewGateway()
	}

	agents := catalog.NewAgentCatalog()
	workflows := catalog.NewWorkflowCatalog()

	loop := orchestrator.New(opts.Gateway, opts.Registry, func(o *orchestrator.Options) {
		o.TaskLogs = opts.TaskLogs
		o.Metrics = opts.Metrics
		o.Logger = opts.Logger
		for _, fn := range opts.LoopOptions {
			fn(o)
		}
	})

	engine := workflow.New(loop, opts.Registry, func(o *workflow.Options) {
		o.Agents = agents
		o.Metrics = opts.Metrics
		o.Logger = opts.Logger
		for _, fn := range opts.EngineOptions {
			fn(o)
		}
	})

	return &AgentFlow{
		registry:  opts.Registry,
		agents:    agents,
		workflows: workflows,
		loop:      loop,
		engine:    engine,
	}
}

// Registry exposes the tool registry for registration.
func (f *AgentFlow) Registry() *tool.Registry { return f.registry }

// Agents exposes the agent catalog.
func (f *AgentFlow) Agents() *catalog.AgentCatalog { return f.agents }

// Workflows exposes the workflow catalog.
func (f *AgentFlow) Workflows() *catalog.WorkflowCatalog { return f.workflows }

// Engine exposes the workflow engine, e.g. for the scheduler.
func (f *AgentFlow) Engine() *workflow.Engine { return f.engine }

// RegisterTools adds tools to the registry, panicking on duplicates.
func (f *AgentFlow) RegisterTools(tools ...tool.Tool) {
	f.registry.MustRegister(tools...)
}

// RegisterAgent adds (or replaces) an agent definition.
func (f *AgentFlow) RegisterAgent(def core.AgentDefinition) error {
	return f.agents.Put(def)
}

// RegisterWorkflow validates and adds (or replaces) a workflow graph.
func (f *AgentFlow) RegisterWorkflow(g workflow.Graph) error {
	return f.workflows.Put(g)
}

// RunAgent executes the reasoning loop for a registered agent, streaming the
// event trace to sink.
func (f *AgentFlow) RunAgent(
	ctx context.Context,
	agentID, task string,
	sink core.Sink,
	optFns ...func(o *orchestrator.RunOptions),
) (*orchestrator.Result, error) {
	def, err := f.agents.Get(agentID)
	if err != nil {
		return nil, err
	}
	return f.loop.Run(ctx, *def, task, sink, optFns...)
}

// RunWorkflow executes a registered workflow graph to completion.
func (f *AgentFlow) RunWorkflow(
	ctx context.Context,
	workflowID string,
	optFns ...func(o *workflow.ExecuteOptions),
) (*workflow.Run, error) {
	graph, err := f.workflows.Get(workflowID)
	if err != nil {
		return nil, err
	}
	return f.engine.Execute(ctx, graph, optFns...)
}

// CancelWorkflow stops a running workflow by run id.
func (f *AgentFlow) CancelWorkflow(runID string) error {
	return f.engine.Cancel(runID)
}
