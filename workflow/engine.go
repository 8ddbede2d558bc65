package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/logging"
	"github.com/AlpaslanErdag/Orchestrator/metrics"
	"github.com/AlpaslanErdag/Orchestrator/orchestrator"
	"github.com/AlpaslanErdag/Orchestrator/tool"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Agents resolves agent definitions for agent nodes.
	Agents core.AgentStore
	// MaxParallel bounds the number of nodes executing concurrently.
	MaxParallel int
	// Metrics receives engine counters. Nil disables metrics.
	Metrics *metrics.Metrics
	// Logger receives engine diagnostics.
	Logger logging.Logger
}

// Engine executes validated workflow graphs. Public methods are safe for
// concurrent use; any number of runs may be in flight at once.
type Engine struct {
	orchestrator *orchestrator.Orchestrator
	registry     *tool.Registry
	agents       core.AgentStore
	maxParallel  int
	metrics      *metrics.Metrics
	logger       logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs an Engine with optional overrides.
func New(orch *orchestrator.Orchestrator, registry *tool.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxParallel: 4,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		orchestrator: orch,
		registry:     registry,
		agents:       opts.Agents,
		maxParallel:  opts.MaxParallel,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		activeRuns:   make(map[string]context.CancelFunc),
	}
}

// ExecuteOptions carry per-run overrides.
type ExecuteOptions struct {
	// RunID overrides the generated run identifier.
	RunID string
	// TriggerData supplies external input per trigger node id, overlaying
	// the node's static config.
	TriggerData map[string]map[string]any
	// Sink receives the run's ordered event trace.
	Sink core.Sink
}

// Execute validates and runs a graph to completion. The run record is
// returned even when the run failed or was cancelled so callers can inspect
// per-node outcomes; only a validation failure returns a nil run.
func (e *Engine) Execute(ctx context.Context, graph *Graph, optFns ...func(o *ExecuteOptions)) (*Run, error) {
	var opts ExecuteOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := Validate(graph); err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = core.NewID()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.mu.Lock()
	e.activeRuns[runID] = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.activeRuns, runID)
		e.mu.Unlock()
	}()

	s := newScheduler(e, graph, runID, opts)
	run, err := s.execute(ctx)
	e.metrics.WorkflowRun(string(run.Status))
	return run, err
}

// Cancel stops a running workflow by run id. In-flight nodes observe the
// cancellation through their context; unstarted nodes are skipped.
func (e *Engine) Cancel(runID string) error {
	e.mu.Lock()
	cancel, exists := e.activeRuns[runID]
	e.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}
	cancel()
	return nil
}

// scheduler is the per-run state of one graph execution. It launches ready
// nodes in declaration order, contains failures by skipping dependents and
// settles the run status from the output nodes.
type scheduler struct {
	engine  *Engine
	graph   *Graph
	run     *Run
	emitter *core.Emitter
	logger  logging.Logger

	index    map[string]int    // node id -> declaration index
	nodes    map[string]Node   // node id -> declaration
	incoming map[string][]Edge // target id -> edges, declaration order
	outgoing map[string][]Edge // source id -> edges, declaration order
	indegree map[string]int

	trigger map[string]map[string]any
	ready   []string
	results chan nodeResult
	running int
}

type nodeResult struct {
	nodeID  string
	outputs map[string]any
	err     error
}

func newScheduler(e *Engine, graph *Graph, runID string, opts ExecuteOptions) *scheduler {
	s := &scheduler{
		engine:   e,
		graph:    graph,
		emitter:  core.NewEmitter(runID, opts.Sink),
		logger:   logging.With(e.logger, "run_id", runID, "graph", graph.ID),
		index:    make(map[string]int, len(graph.Nodes)),
		nodes:    make(map[string]Node, len(graph.Nodes)),
		incoming: make(map[string][]Edge),
		outgoing: make(map[string][]Edge),
		indegree: make(map[string]int, len(graph.Nodes)),
		trigger:  opts.TriggerData,
		results:  make(chan nodeResult),
		run: &Run{
			ID:        runID,
			GraphID:   graph.ID,
			Nodes:     make(map[string]*NodeState, len(graph.Nodes)),
			Outputs:   make(map[string]any),
			StartedAt: time.Now().UTC(),
		},
	}
	for i, n := range graph.Nodes {
		s.index[n.ID] = i
		s.nodes[n.ID] = n
		s.run.Nodes[n.ID] = &NodeState{Status: StatusPending}
	}
	for _, edge := range graph.Edges {
		s.incoming[edge.Target] = append(s.incoming[edge.Target], edge)
		s.outgoing[edge.Source] = append(s.outgoing[edge.Source], edge)
		s.indegree[edge.Target]++
	}
	for _, n := range graph.Nodes {
		if s.indegree[n.ID] == 0 {
			s.ready = append(s.ready, n.ID)
		}
	}
	s.sortReady()
	return s
}

func (s *scheduler) execute(ctx context.Context) (*Run, error) {
	if err := s.emitter.Emit(ctx, core.StageInit, "",
		fmt.Sprintf("workflow %s: %d nodes, %d edges", s.graph.ID, len(s.graph.Nodes), len(s.graph.Edges))); err != nil {
		s.settle(true)
		return s.run, fmt.Errorf("%w: event sink rejected run start: %v", core.ErrCancelled, err)
	}

	cancelled := false
	for {
		if !cancelled {
			s.launchReady(ctx)
		}
		if s.running == 0 {
			if cancelled || len(s.ready) == 0 {
				break
			}
			continue
		}

		select {
		case <-ctx.Done():
			if !cancelled {
				cancelled = true
				s.logger.Info("workflow.run.cancelling", "in_flight", s.running)
			}
			// Wait for in-flight nodes; they observe ctx themselves.
			res := <-s.results
			s.handleResult(ctx, res)
		case res := <-s.results:
			if s.handleResult(ctx, res) || ctx.Err() != nil {
				cancelled = true
			}
		}
	}

	s.settle(cancelled)

	bg := context.WithoutCancel(ctx)
	if cancelled {
		_ = s.emitter.Emit(bg, core.StageCancelled, "", "workflow run cancelled")
		return s.run, fmt.Errorf("%w: %v", core.ErrCancelled, context.Cause(ctx))
	}
	_ = s.emitter.Emit(bg, core.StageDone, "", fmt.Sprintf("workflow run %s", s.run.Status))
	return s.run, nil
}

// launchReady starts every ready node, in declaration order, up to the
// parallelism bound.
func (s *scheduler) launchReady(ctx context.Context) {
	for len(s.ready) > 0 && s.running < s.engine.maxParallel {
		id := s.ready[0]
		s.ready = s.ready[1:]

		state := s.run.Nodes[id]
		if state.Status != StatusPending {
			continue
		}
		node := s.nodes[id]
		inputs, err := s.collectInputs(node)
		if err != nil {
			s.failNode(ctx, id, err)
			continue
		}

		state.Status = StatusRunning
		state.StartedAt = time.Now().UTC()
		s.run.Order = append(s.run.Order, id)
		s.running++
		s.logger.Debug("workflow.node.start", "node", id, "type", string(node.Type))

		go func(node Node, inputs map[string]any) {
			outputs, err := s.engine.executeNode(ctx, node, inputs, s.trigger[node.ID], s.emitter)
			s.results <- nodeResult{nodeID: node.ID, outputs: outputs, err: err}
		}(node, inputs)
	}
}

// collectInputs merges, per input port, the outputs arriving over the node's
// incoming edges in edge declaration order.
func (s *scheduler) collectInputs(node Node) (map[string]any, error) {
	arriving := make(map[string][]any)
	for _, edge := range s.incoming[node.ID] {
		src := s.run.Nodes[edge.Source]
		if src.Status != StatusSucceeded {
			continue
		}
		if v, ok := src.Outputs[edge.sourcePort()]; ok {
			port := edge.targetPort()
			arriving[port] = append(arriving[port], v)
		}
	}

	inputs := make(map[string]any, len(arriving))
	for port, values := range arriving {
		merged, err := mergePortValues(values)
		if err != nil {
			return nil, core.NewNodeExecutionError(node.ID, err)
		}
		inputs[port] = merged
	}
	return inputs, nil
}

// handleResult settles one finished node. It reports whether the result
// demands run cancellation (the node saw a dead event consumer or a
// cancelled context).
func (s *scheduler) handleResult(ctx context.Context, res nodeResult) bool {
	s.running--
	state := s.run.Nodes[res.nodeID]
	state.FinishedAt = time.Now().UTC()
	node := s.nodes[res.nodeID]

	if res.err != nil {
		s.failNode(ctx, res.nodeID, res.err)
		return errors.Is(res.err, core.ErrCancelled)
	}

	state.Status = StatusSucceeded
	state.Outputs = res.outputs
	s.engine.metrics.NodeExecution(string(node.Type), string(StatusSucceeded))
	s.logger.Debug("workflow.node.done", "node", res.nodeID)

	if node.Type == NodeOutput {
		s.run.Outputs[res.nodeID] = res.outputs[outputValueKey]
	}

	for _, edge := range s.outgoing[res.nodeID] {
		s.indegree[edge.Target]--
		if s.indegree[edge.Target] == 0 && s.run.Nodes[edge.Target].Status == StatusPending {
			s.ready = append(s.ready, edge.Target)
		}
	}
	s.sortReady()
	return false
}

// failNode marks a node failed, publishes the failure on the trace and skips
// every transitive dependent. Independent branches are untouched.
func (s *scheduler) failNode(ctx context.Context, nodeID string, err error) {
	state := s.run.Nodes[nodeID]
	state.Status = StatusFailed
	state.Error = err.Error()
	if state.FinishedAt.IsZero() {
		state.FinishedAt = time.Now().UTC()
	}
	node := s.nodes[nodeID]
	s.engine.metrics.NodeExecution(string(node.Type), string(StatusFailed))
	s.logger.Warn("workflow.node.failed", "node", nodeID, "error", err.Error())
	_ = s.emitter.Emit(context.WithoutCancel(ctx), core.StageError, nodeID, err.Error())

	s.skipDownstream(nodeID)
}

// skipDownstream marks all still-pending transitive dependents of nodeID as
// skipped.
func (s *scheduler) skipDownstream(nodeID string) {
	queue := []string{nodeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, edge := range s.outgoing[id] {
			target := s.run.Nodes[edge.Target]
			if target.Status == StatusPending {
				target.Status = StatusSkipped
				s.engine.metrics.NodeExecution(string(s.nodes[edge.Target].Type), string(StatusSkipped))
			}
			queue = append(queue, edge.Target)
		}
	}
}

// settle marks leftovers and computes the run status. The status is judged
// over the output nodes: all succeeded means succeeded, none succeeded means
// failed, anything in between is partial. A graph without output nodes is
// judged over all its nodes the same way. Cancellation always settles the
// run as failed.
func (s *scheduler) settle(cancelled bool) {
	for _, state := range s.run.Nodes {
		if state.Status == StatusPending || state.Status == StatusRunning {
			state.Status = StatusSkipped
		}
	}
	s.run.FinishedAt = time.Now().UTC()

	if cancelled {
		s.run.Status = RunFailed
		return
	}

	total, succeeded := 0, 0
	for _, n := range s.graph.Nodes {
		if n.Type != NodeOutput {
			continue
		}
		total++
		if s.run.Nodes[n.ID].Status == StatusSucceeded {
			succeeded++
		}
	}
	if total == 0 {
		for _, n := range s.graph.Nodes {
			total++
			if s.run.Nodes[n.ID].Status == StatusSucceeded {
				succeeded++
			}
		}
	}

	switch {
	case succeeded == total:
		s.run.Status = RunSucceeded
	case succeeded == 0:
		s.run.Status = RunFailed
	default:
		s.run.Status = RunPartial
	}
}

func (s *scheduler) sortReady() {
	sort.Slice(s.ready, func(i, j int) bool {
		return s.index[s.ready[i]] < s.index[s.ready[j]]
	})
}
