// Package api defines the JSON payloads of the daemon HTTP API and the client
// the CLI uses to call it.
package api
