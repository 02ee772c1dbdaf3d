// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// logging with configurable levels, writing JSON for the server and text for
// interactive client commands.
package logger
