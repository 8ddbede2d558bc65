// Package core provides the foundational domain types shared by the
// Orchestrator loop and the Workflow Engine. It defines:
//
//   - AgentDefinition (an agent's identity, model binding and tool allow-list)
//   - ConversationMessage / ToolCall (the append-only loop transcript)
//   - ExecutionEvent / Stage / Sink (the ordered progress trace of one run)
//   - Decision (the resolved outcome of a single THINKING step)
//   - The error taxonomy (validation, gateway, iteration, graph and node errors)
//
// The package intentionally keeps implementation concerns (the loop itself,
// graph scheduling, model adapters, concrete tools) out of scope, exposing
// small types and interfaces so the subsystems can evolve independently.
package core
