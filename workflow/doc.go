// Package workflow implements the DAG engine: typed nodes wired by edges
// between named ports, validated up front and executed in dependency order.
//
// A graph is rejected as a whole before any node runs when it contains a
// cycle, a dangling edge or an undeclared port; validation is total, so a
// run either starts cleanly or not at all. During execution a failing node
// is contained: its downstream nodes are skipped while independent branches
// keep running, and the run settles as succeeded, partial or failed
// depending on which output nodes produced a value. Independent branches
// may execute in parallel; ready nodes are launched in declaration order so
// scheduling stays deterministic.
package workflow
