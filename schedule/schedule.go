// Package schedule runs workflows on cron expressions, so recurring jobs
// like a daily report pipeline need no external trigger.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AlpaslanErdag/Orchestrator/catalog"
	"github.com/AlpaslanErdag/Orchestrator/logging"
	"github.com/AlpaslanErdag/Orchestrator/workflow"
)

// Options configure a Scheduler.
type Options struct {
	// Timeout bounds each scheduled workflow run.
	Timeout time.Duration
	// Logger receives scheduler diagnostics.
	Logger logging.Logger
}

// Scheduler triggers catalog workflows on cron schedules. Runs use the
// standard 5-field cron format; each fires the workflow with the trigger
// data registered for the entry.
type Scheduler struct {
	cron    *cron.Cron
	engine  *workflow.Engine
	flows   *catalog.WorkflowCatalog
	timeout time.Duration
	logger  logging.Logger
}

// New constructs a Scheduler executing through the given engine.
func New(engine *workflow.Engine, flows *catalog.WorkflowCatalog, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Timeout: 10 * time.Minute,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Scheduler{
		cron:    cron.New(),
		engine:  engine,
		flows:   flows,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// Add registers a workflow to run on the given cron spec with the given
// per-trigger-node data. The workflow is resolved from the catalog at fire
// time, so catalog updates take effect without rescheduling.
func (s *Scheduler) Add(spec, workflowID string, triggerData map[string]map[string]any) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		s.fire(workflowID, triggerData)
	})
}

// Remove drops a scheduled entry.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// Start begins firing schedules in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns once in-flight jobs have finished.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) fire(workflowID string, triggerData map[string]map[string]any) {
	logger := logging.With(s.logger, "workflow", workflowID)

	graph, err := s.flows.Get(workflowID)
	if err != nil {
		logger.Error("schedule.fire.resolve_failed", "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	run, err := s.engine.Execute(ctx, graph, func(o *workflow.ExecuteOptions) {
		o.TriggerData = triggerData
	})
	if err != nil {
		logger.Error("schedule.fire.run_failed", "error", err.Error())
		return
	}
	logger.Info("schedule.fire.done", "run_id", run.ID, "status", string(run.Status))
}
