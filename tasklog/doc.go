// Package tasklog persists completed run summaries. The in-memory store
// suits tests and ephemeral demos; the SQLite store keeps history across
// restarts.
package tasklog
