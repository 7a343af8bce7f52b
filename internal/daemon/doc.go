// Package daemon coordinates the long-running timelapsed process.
//
// It wires configuration, the EPIC catalog client, the video pipeline, and the
// HTTP API into a single lifecycle with flock-based locking to prevent
// multiple instances. The API surface covers job start, live progress,
// cooperative cancellation, a status summary, and byte-range serving of the
// published video asset.
//
// Keep orchestration logic here: the pipeline stages live in their respective
// packages while the daemon focuses on startup, shutdown, and request routing.
package daemon
