// Package task runs background processing for uploaded files.
//
// A Runner drains a bounded TaskQueue with a fixed number of workers and
// writes each task's outcome to the backend's TaskStore. Processing itself
// is simulated: a ProcessingTask waits a random latency and then resolves
// to completed or failed according to a configured success ratio.
package task
