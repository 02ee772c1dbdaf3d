// Package service contains the backend use cases behind the HTTP handlers.
//
// UploadService records a new upload as pending and announces it on the
// event emitter so the task runner can simulate its processing.
// StatusService answers status queries from the task store.
//
// Services receive their dependencies through constructor injection and
// depend only on the store.TaskStore and events.EventEmitter interfaces,
// never on a concrete backend.
package service
