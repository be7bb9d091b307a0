// Package tasks tracks in-flight listing and download subprocesses.
//
// The registry is a mutex-guarded map serving as the single source of truth
// for "what is currently running"; the reaper sweeps it on a fixed interval,
// evicting finished entries and escalating terminate-then-kill signals at
// tasks whose subprocess output has gone quiet past the configured ceiling.
package tasks
