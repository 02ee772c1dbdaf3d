// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. The backend's upload status table lives
// behind TaskStore; implementations are in internal/platform.
package store
