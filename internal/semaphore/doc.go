// Package semaphore provides the bounded-admission primitive gating how many
// listing or download subprocesses may run concurrently.
//
// Two independent instances exist in a running daemon, one per job kind, each
// with a separately configurable limit that can be adjusted at runtime.
package semaphore
