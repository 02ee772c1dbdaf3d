// Package domain contains the core entities shared by the upload backend and
// the tracking client: task statuses, tracked tasks and uploaded files, along
// with the client-side validation rules for files.
package domain
