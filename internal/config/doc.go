// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config file, and FILETRACK_ environment
// variables. Both the upload backend and the tracking client read their
// settings from the same Config struct.
package config
