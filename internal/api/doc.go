// Package api defines the transport-friendly DTOs exchanged over the daemon's
// HTTP surface and the read-only catalogue service behind it.
package api
