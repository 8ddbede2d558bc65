// Package artifact stores files produced by tool invocations, such as
// generated reports. The canonical Store interface lives here; the
// filesystem store is the default for local deployments, the in-memory
// store serves tests and ephemeral demos. Callers should depend on the
// interface so backends can be swapped without touching calling code.
package artifact
