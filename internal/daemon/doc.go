// Package daemon wires the orchestration core together behind a single-instance
// lock and a loopback HTTP API: the catalogue store, the task registry and
// reaper, the two admission semaphores, the listing reconciler, and the
// download orchestrator.
package daemon
