// Package events provides the in-process event bus that decouples the
// upload API from background processing.
//
// The upload service emits an UploadReceived event once a record exists;
// the server wires a handler that submits the processing task. Neither side
// imports the other.
package events
