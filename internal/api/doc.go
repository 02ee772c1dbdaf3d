// Package api exposes the upload and status endpoints over HTTP. Handlers
// translate requests into service calls and map service errors to status
// codes without leaking internal details.
package api
