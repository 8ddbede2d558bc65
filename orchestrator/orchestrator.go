package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
	"github.com/AlpaslanErdag/Orchestrator/logging"
	"github.com/AlpaslanErdag/Orchestrator/metrics"
	"github.com/AlpaslanErdag/Orchestrator/model"
	"github.com/AlpaslanErdag/Orchestrator/tool"
)

// Options configure an Orchestrator instance.
type Options struct {
	// MaxIterations bounds the number of think-act-observe cycles per run.
	MaxIterations int
	// GatewayTimeout bounds each model gateway call.
	GatewayTimeout time.Duration
	// ObservationLimit caps the size (in bytes) of a tool observation before
	// it re-enters the transcript, bounding token growth.
	ObservationLimit int
	// TaskLogs receives a summary of every completed run. Nil disables
	// task logging.
	TaskLogs core.TaskLogStore
	// Metrics receives loop counters. Nil disables metrics.
	Metrics *metrics.Metrics
	// Logger receives loop diagnostics.
	Logger logging.Logger
}

// Orchestrator drives one agent's reasoning loop against a model gateway and
// a tool registry. It holds no per-run state; a single instance serves any
// number of concurrent runs.
type Orchestrator struct {
	gateway          model.Gateway
	registry         *tool.Registry
	maxIterations    int
	gatewayTimeout   time.Duration
	observationLimit int
	taskLogs         core.TaskLogStore
	metrics          *metrics.Metrics
	logger           logging.Logger
}

// New constructs an Orchestrator with optional overrides.
func New(gateway model.Gateway, registry *tool.Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxIterations:    10,
		GatewayTimeout:   120 * time.Second,
		ObservationLimit: 3000,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		gateway:          gateway,
		registry:         registry,
		maxIterations:    opts.MaxIterations,
		gatewayTimeout:   opts.GatewayTimeout,
		observationLimit: opts.ObservationLimit,
		taskLogs:         opts.TaskLogs,
		metrics:          opts.Metrics,
		logger:           opts.Logger,
	}
}

// RunOptions carry per-run overrides.
type RunOptions struct {
	// RunID overrides the generated run identifier (a workflow node reuses
	// its run's id so the whole trace shares one sequence space).
	RunID string
	// NodeID tags every emitted event with the owning workflow node.
	NodeID string
	// Emitter, when set, is used instead of a fresh one so a workflow run
	// keeps a single strictly-increasing sequence across nodes.
	Emitter *core.Emitter
	// ImageURL attaches an image reference to the user task for
	// vision-capable agents.
	ImageURL string
}

// Result is the outcome of one completed loop run.
type Result struct {
	RunID        string          `json:"run_id"`
	FinalAnswer  string          `json:"final_answer"`
	ArtifactPath string          `json:"artifact_path,omitempty"`
	Transcript   core.Transcript `json:"transcript"`
	Iterations   int             `json:"iterations"`
}

// Run executes the loop for one agent and task, publishing the event trace
// to sink. It returns the final answer or a typed error; it never returns
// silently and never returns raw tool-call JSON as the answer.
func (o *Orchestrator) Run(
	ctx context.Context,
	def core.AgentDefinition,
	task string,
	sink core.Sink,
	optFns ...func(o *RunOptions),
) (*Result, error) {
	var runOpts RunOptions
	for _, fn := range optFns {
		fn(&runOpts)
	}

	runID := runOpts.RunID
	if runID == "" {
		runID = core.NewID()
	}
	emitter := runOpts.Emitter
	if emitter == nil {
		emitter = core.NewEmitter(runID, sink)
	}

	logger := logging.With(o.logger, "run_id", runID, "agent", def.ID)
	run := &loopRun{
		o:       o,
		def:     def,
		task:    task,
		nodeID:  runOpts.NodeID,
		emitter: emitter,
		logger:  logger,
	}

	result, err := run.execute(ctx, runOpts.ImageURL)
	if err != nil {
		logger.Error("loop.run.failed", "error", err.Error(), "iterations", run.iterations)
		return nil, err
	}
	logger.Info("loop.run.done", "iterations", run.iterations)
	return result, nil
}

// loopRun is the per-run state of one loop execution. It is owned by a
// single goroutine; the strictly sequential phases need no locking.
type loopRun struct {
	o          *Orchestrator
	def        core.AgentDefinition
	task       string
	nodeID     string
	emitter    *core.Emitter
	logger     logging.Logger
	transcript core.Transcript
	iterations int
	retried    bool
	artifact   string
}

func (r *loopRun) emit(ctx context.Context, stage core.Stage, payload string) error {
	if err := r.emitter.Emit(ctx, stage, r.nodeID, payload); err != nil {
		return fmt.Errorf("%w: event sink rejected %s event: %v", core.ErrCancelled, stage, err)
	}
	return nil
}

func (r *loopRun) execute(ctx context.Context, imageURL string) (*Result, error) {
	o := r.o
	allowed := o.registry.ListAllowed(r.def)
	prompt := BuildSystemPrompt(r.def, allowed)

	userMsg := core.NewUserMessage(r.task)
	if imageURL != "" {
		userMsg.Content += "\n\n[Note: an image is attached. Call the vision tool if you need to inspect it.]"
		userMsg.ImageURL = imageURL
	}
	r.transcript = core.Transcript{core.NewSystemMessage(prompt), userMsg}

	if err := r.emit(ctx, core.StageInit,
		fmt.Sprintf("agent %s (%s) bound to model %s with %d tools", r.def.Name, r.def.ID, r.def.ModelName, len(allowed))); err != nil {
		return nil, err
	}

	toolDefs := make([]model.ToolDefinition, len(allowed))
	for i, d := range allowed {
		toolDefs[i] = model.ToolDefinition{Name: d.Name, Description: d.Description, Parameters: d.Parameters}
	}

	for r.iterations = 1; r.iterations <= o.maxIterations; r.iterations++ {
		if err := ctx.Err(); err != nil {
			_ = r.emit(context.WithoutCancel(ctx), core.StageCancelled, err.Error())
			o.metrics.LoopRun(string(core.StageCancelled), r.iterations)
			return nil, fmt.Errorf("%w: %v", core.ErrCancelled, err)
		}

		resp, err := r.completeOnce(ctx, toolDefs)
		if err != nil {
			return nil, r.fail(ctx, err)
		}

		if err := r.emit(ctx, core.StageThinking, thinkingSummary(resp)); err != nil {
			return nil, err
		}

		decision := resolveDecision(resp)
		switch decision.Kind {
		case core.DecisionToolInvocation:
			done, err := r.act(ctx, *decision.Call)
			if err != nil {
				return nil, err
			}
			if done {
				continue
			}
			// Malformed call exhausted its corrective retry.
			return nil, r.fail(ctx, &core.MalformedToolCallError{AgentID: r.def.ID, Raw: decision.Call.Name})

		case core.DecisionMalformed:
			if r.correct(ctx, decision.Raw, "the JSON block could not be executed as a tool call") {
				continue
			}
			return nil, r.fail(ctx, &core.MalformedToolCallError{AgentID: r.def.ID, Raw: decision.Raw})

		case core.DecisionFinalAnswer:
			if strings.TrimSpace(decision.Answer) == "" {
				return nil, r.fail(ctx, core.NewGatewayError(r.def.ModelName, fmt.Errorf("model returned an empty response")))
			}
			return r.finish(ctx, decision.Answer)
		}
	}

	return nil, r.fail(ctx, &core.IterationLimitError{AgentID: r.def.ID, Limit: o.maxIterations})
}

// completeOnce performs one bounded gateway call.
func (r *loopRun) completeOnce(ctx context.Context, toolDefs []model.ToolDefinition) (*model.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.o.gatewayTimeout)
	defer cancel()

	start := time.Now()
	resp, err := r.o.gateway.Complete(callCtx, model.Request{
		Model:      r.def.ModelName,
		Transcript: r.transcript,
		Tools:      toolDefs,
	})
	r.o.metrics.ModelCall(time.Since(start))
	if err != nil {
		if _, ok := err.(*core.GatewayError); ok {
			return nil, err
		}
		return nil, core.NewGatewayError(r.def.ModelName, err)
	}
	return resp, nil
}

// act validates and executes one detected tool call. It returns (true, nil)
// when the loop should continue (observation appended or corrective retry
// armed) and (false, nil) when the malformed path is exhausted.
func (r *loopRun) act(ctx context.Context, call core.ToolCall) (bool, error) {
	o := r.o

	args, perr := parseArguments(call.Arguments)
	if perr != nil {
		return r.correct(ctx, call.Arguments, "tool arguments could not be parsed as JSON"), nil
	}
	if !r.allowedTool(call.Name) {
		return r.correct(ctx, call.Name, fmt.Sprintf("tool %q is not available to this agent", call.Name)), nil
	}
	if err := o.registry.Validate(call.Name, args); err != nil {
		return r.correct(ctx, call.Name, err.Error()), nil
	}

	if call.ID == "" {
		call.ID = core.NewID()
	}

	if err := r.emit(ctx, core.StageActing,
		fmt.Sprintf("Executing tool: %s\nArgs: %s", call.Name, call.Arguments)); err != nil {
		return false, err
	}
	r.transcript = append(r.transcript, core.NewToolCallMessage(call))

	result := o.registry.Invoke(ctx, call.Name, args)
	o.metrics.ToolInvocation(call.Name, result.Success)
	if result.ArtifactPath != "" {
		r.artifact = result.ArtifactPath
	}

	observation := renderObservation(call.Name, result)
	observation = truncate(observation, o.observationLimit)
	r.transcript = append(r.transcript, core.NewObservationMessage(call.ID, observation))

	if err := r.emit(ctx, core.StageObservation, observation); err != nil {
		return false, err
	}
	return true, nil
}

// correct arms the single corrective retry for a malformed tool call: the
// raw attempt stays in the transcript and a system message asks the model to
// reissue a valid call. Returns false once the retry is spent.
func (r *loopRun) correct(ctx context.Context, raw, reason string) bool {
	if r.retried {
		return false
	}
	r.retried = true
	r.logger.Warn("loop.tool_call.malformed", "reason", reason)
	r.transcript = append(r.transcript,
		core.NewAssistantMessage(raw),
		core.NewSystemMessage(
			"Your previous tool call was invalid: "+reason+". "+
				`Reissue exactly one valid call as JSON {"tool": "<name>", "arguments": {...}} using only your available tools, or answer the user directly.`))
	_ = r.emit(ctx, core.StageThinking, "Malformed tool call intercepted; asking the model to reissue ("+reason+")")
	return true
}

func (r *loopRun) allowedTool(name string) bool {
	if r.def.HasTool(name) {
		return true
	}
	// The model may answer with the canonical name of an aliased entry.
	if d, err := r.o.registry.Describe(name); err == nil {
		for _, t := range r.def.Tools {
			if ad, err := r.o.registry.Describe(t); err == nil && ad.Name == d.Name {
				return true
			}
		}
	}
	return false
}

// finish emits DONE, records the task log and builds the result.
func (r *loopRun) finish(ctx context.Context, answer string) (*Result, error) {
	if err := r.emit(ctx, core.StageDone, answer); err != nil {
		return nil, err
	}
	r.o.metrics.LoopRun(string(core.StageDone), r.iterations)

	if r.o.taskLogs != nil {
		log := core.TaskLog{
			ID:             core.NewID(),
			AgentID:        r.def.ID,
			InputQuery:     r.task,
			ThoughtProcess: r.transcript.Render(),
			FinalOutput:    answer,
			ArtifactPath:   r.artifact,
			CreatedAt:      time.Now().UTC(),
		}
		if err := r.o.taskLogs.Append(log); err != nil {
			r.logger.Warn("loop.tasklog.append_failed", "error", err.Error())
		}
	}

	return &Result{
		RunID:        r.emitter.RunID(),
		FinalAnswer:  answer,
		ArtifactPath: r.artifact,
		Transcript:   r.transcript,
		Iterations:   r.iterations,
	}, nil
}

// fail emits ERROR (best effort) and returns err for the caller.
func (r *loopRun) fail(ctx context.Context, err error) error {
	_ = r.emit(context.WithoutCancel(ctx), core.StageError, err.Error())
	r.o.metrics.LoopRun(string(core.StageError), r.iterations)
	return err
}

// thinkingSummary renders the THINKING payload for a model response.
func thinkingSummary(resp *model.Response) string {
	text := strings.TrimSpace(resp.Text)
	switch {
	case resp.ToolCall != nil && text == "":
		return fmt.Sprintf("Model requested tool %s", resp.ToolCall.Name)
	case text == "":
		return "(no reasoning text)"
	default:
		return text
	}
}

// renderObservation flattens a tool result into the observation text fed
// back to the model.
func renderObservation(toolName string, result tool.Result) string {
	if !result.Success {
		return fmt.Sprintf("ERROR while executing '%s': %s", toolName, result.Error)
	}
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

// truncate caps s at limit bytes on a rune boundary, marking the cut.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n[...truncated]"
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
