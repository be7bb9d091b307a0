// Package downloads turns batches of catalogue items into bounded-concurrency
// fetch jobs.
//
// Each accepted item gets a pending task before its goroutine ever waits on
// the download semaphore, so duplicate requests for an in-flight URL are
// visible and rejected immediately. Completion updates the catalogue and
// emits lifecycle events; failures are isolated per item and never retried
// automatically.
package downloads
