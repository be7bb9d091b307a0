// Package notifications delivers the events the orchestration core emits:
// download lifecycle, throttled progress updates, and listing completion.
//
// Delivery is fire-and-forget over ntfy when a topic is configured; callers
// treat publish failures as log-worthy, never fatal.
package notifications
