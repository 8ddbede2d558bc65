// Package metrics exposes Prometheus collectors for the Orchestrator loop
// and the Workflow Engine. All Metrics methods are nil-safe so components can
// run without a metrics pipeline attached.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors published by the core.
type Metrics struct {
	loopRuns        *prometheus.CounterVec
	loopIterations  prometheus.Histogram
	toolInvocations *prometheus.CounterVec
	modelLatency    prometheus.Histogram
	nodeExecutions  *prometheus.CounterVec
	workflowRuns    *prometheus.CounterVec
}

// New creates the collector set and registers it with reg (use
// prometheus.DefaultRegisterer for the process-global registry).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loopRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "loop_runs_total",
			Help:      "Completed Orchestrator runs by terminal stage.",
		}, []string{"stage"}),
		loopIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentflow",
			Name:      "loop_iterations",
			Help:      "Think-act-observe cycles consumed per run.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "tool_invocations_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentflow",
			Name:      "model_call_seconds",
			Help:      "Model gateway call latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		nodeExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "workflow_node_executions_total",
			Help:      "Workflow node executions by node type and status.",
		}, []string{"type", "status"}),
		workflowRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "workflow_runs_total",
			Help:      "Workflow runs by final status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.loopRuns, m.loopIterations, m.toolInvocations,
			m.modelLatency, m.nodeExecutions, m.workflowRuns,
		)
	}
	return m
}

// LoopRun records a completed loop run with its terminal stage and the number
// of iterations it consumed.
func (m *Metrics) LoopRun(stage string, iterations int) {
	if m == nil {
		return
	}
	m.loopRuns.WithLabelValues(stage).Inc()
	m.loopIterations.Observe(float64(iterations))
}

// ToolInvocation records one tool invocation outcome.
func (m *Metrics) ToolInvocation(tool string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.toolInvocations.WithLabelValues(tool, outcome).Inc()
}

// ModelCall records one gateway round trip.
func (m *Metrics) ModelCall(dur time.Duration) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(dur.Seconds())
}

// NodeExecution records a workflow node reaching a terminal status.
func (m *Metrics) NodeExecution(nodeType, status string) {
	if m == nil {
		return
	}
	m.nodeExecutions.WithLabelValues(nodeType, status).Inc()
}

// WorkflowRun records a workflow run reaching a final status.
func (m *Metrics) WorkflowRun(status string) {
	if m == nil {
		return
	}
	m.workflowRuns.WithLabelValues(status).Inc()
}
