// Package tracker is the client side of filetrack. It validates and uploads
// files, then polls the backend for each resulting task until the task
// completes, fails, or is cancelled.
//
// Each in-flight task owns exactly one polling goroutine driven by a ticker.
// Successive polls of a task never overlap: a slow response makes the ticker
// drop ticks. Transport failures consume a per-task retry budget that is
// never replenished; exhausting it marks the task failed.
//
// Every task carries a generation number that is bumped when the task is
// cancelled or the tracker is closed. A poll result is applied only if it
// was issued under the current generation, so a late response can never
// overwrite a cancelled task.
package tracker
