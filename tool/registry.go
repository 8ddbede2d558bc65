package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/util"
	"github.com/AlpaslanErdag/Orchestrator/logging"
)

// DefaultAliases maps historical / model-invented tool names onto their
// canonical registrations. Models frequently shorten or mangle tool names;
// resolving aliases here keeps the loop's detection path simple.
var DefaultAliases = map[string]string{
	"pdf_report_tool": "generate_pdf_report",
	"pdf_tool":        "generate_pdf_report",
	"scraper_tool":    "web_scraper_tool",
	"web_scraper":     "web_scraper_tool",
}

// RegistryOptions configure a Registry instance.
type RegistryOptions struct {
	// Aliases maps alternate names to canonical tool names.
	Aliases map[string]string
	// InvokeTimeout bounds a single tool invocation. Zero disables the bound.
	InvokeTimeout time.Duration
	// Logger receives invocation diagnostics.
	Logger logging.Logger
}

// Registry maps tool names to executable contracts. It validates arguments
// against the descriptor schema before invocation and converts any
// underlying fault into a Result{Success: false} rather than letting it
// escape. Registration happens at wiring time; during a run the registry is
// read-only, so lookups take only a read lock.
type Registry struct {
	mu            sync.RWMutex
	tools         map[string]Tool
	order         []string
	aliases       map[string]string
	invokeTimeout time.Duration
	logger        logging.Logger
}

// NewRegistry constructs a Registry with optional overrides.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Aliases:       DefaultAliases,
		InvokeTimeout: 60 * time.Second,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	aliases := make(map[string]string, len(opts.Aliases))
	for k, v := range opts.Aliases {
		aliases[k] = v
	}

	return &Registry{
		tools:         make(map[string]Tool),
		aliases:       aliases,
		invokeTimeout: opts.InvokeTimeout,
		logger:        opts.Logger,
	}
}

// Register adds a tool under its canonical name. Registering a duplicate
// name is an error.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())
	return nil
}

// MustRegister registers tools and panics on conflict. Intended for wiring
// code where a duplicate is a programming error.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Resolve returns the tool registered under name, following aliases.
func (r *Registry) Resolve(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	t, ok := r.tools[name]
	return t, ok
}

// Describe returns the descriptor for name or an error if it is unknown.
func (r *Registry) Describe(name string) (*Descriptor, error) {
	t, ok := r.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return &Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}, nil
}

// List returns descriptors for all registered tools in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, &Descriptor{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out
}

// ListAllowed returns descriptors for the tools on the agent's allow-list,
// preserving the allow-list order. Unknown names are ignored after alias
// resolution so a stale definition cannot break a run.
func (r *Registry) ListAllowed(def core.AgentDefinition) []*Descriptor {
	seen := make(map[string]bool)
	var out []*Descriptor
	for _, name := range def.Tools {
		d, err := r.Describe(name)
		if err != nil || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}

// Names returns all canonical tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks args against the named tool's schema without invoking it.
// Used by the loop to classify a detected call before ACTING.
func (r *Registry) Validate(name string, args map[string]any) error {
	t, ok := r.Resolve(name)
	if !ok {
		return NewToolError(name, "unknown tool", CodeUnknownTool)
	}
	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		return &ToolError{Tool: t.Name(), Message: err.Error(), Code: CodeValidation, Details: err}
	}
	return nil
}

// Invoke executes the named tool with the given arguments. Every failure
// mode (unknown tool, schema mismatch, execution error, timeout) is
// reported through the Result; Invoke never returns a Go error so callers
// cannot accidentally abort a loop on a recoverable tool fault.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) Result {
	t, ok := r.Resolve(name)
	if !ok {
		r.logger.Warn("tool.invoke.unknown", "tool", name)
		return Result{Success: false, Code: CodeUnknownTool, Error: fmt.Sprintf("unknown tool %q", name)}
	}

	if r.invokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.invokeTimeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := r.callBounded(ctx, t, args)
	dur := time.Since(start)

	if err != nil {
		code := CodeExecution
		if toolErr, ok := err.(*ToolError); ok {
			code = toolErr.Code
		} else if ctx.Err() != nil {
			code = CodeTimeout
		}
		r.logger.Error("tool.invoke.failed", "tool", t.Name(), "code", code, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return Result{Success: false, Code: code, Error: err.Error()}
	}

	r.logger.Info("tool.invoke.success", "tool", t.Name(), "duration_ms", dur.Milliseconds())

	res := Result{Success: true, Payload: payload}
	if ap, ok := payload.(ArtifactPayload); ok {
		res.ArtifactPath = ap.Path
	}
	return res
}

// callBounded runs the tool on its own goroutine so a misbehaving tool that
// ignores ctx cannot wedge the caller. On timeout the goroutine is abandoned;
// its eventual result is dropped.
func (r *Registry) callBounded(ctx context.Context, t Tool, args map[string]any) (any, error) {
	type outcome struct {
		payload any
		err     error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- outcome{err: NewToolError(t.Name(), fmt.Sprintf("panic: %v", rec), CodeExecution)}
			}
		}()
		payload, err := t.Call(ctx, args)
		ch <- outcome{payload: payload, err: err}
	}()

	select {
	case out := <-ch:
		return out.payload, out.err
	case <-ctx.Done():
		return nil, NewToolError(t.Name(), ctx.Err().Error(), CodeTimeout)
	}
}
