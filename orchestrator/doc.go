// Package orchestrator implements the agent execution loop: a think-act-
// observe cycle driven against a model gateway, with reliable tool-call
// detection, schema validation before every invocation and a strictly
// ordered event trace published to a sink.
//
// The loop's state machine is
//
//	INIT -> THINKING -> (ACTING -> OBSERVATION)* -> DONE
//
// with ERROR reachable from every state and CANCELLED entered when the
// caller or the event consumer goes away. Tool calls are detected on two
// independent paths: the gateway's structured tool-call field, and a
// best-effort JSON extraction over the free-text response for models without
// a native tool API. Text that looks like a tool call but cannot be executed
// as one is treated as malformed; after a single corrective retry the run
// fails rather than handing raw JSON to the user as an answer.
package orchestrator
