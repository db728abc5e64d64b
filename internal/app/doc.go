// Package app contains the core application logic. It wires the logger, the
// task registry, the worker pool, the task monitors and the engine into an
// App, and exposes the commands an entrypoint runs: Run, Validate, Watch and
// Tasks. It is decoupled from any specific entrypoint like a CLI or server.
package app
