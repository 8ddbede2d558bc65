// Package sink provides event sink implementations for run traces: an
// in-process channel sink for programmatic consumers, a server-sent events
// writer for HTTP streaming, and a Redis publisher for out-of-process
// fan-out. All sinks preserve submission order and propagate backpressure to
// the producing run.
package sink
