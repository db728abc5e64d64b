// Package cli is responsible for the command tree, reading settings from
// flags and STAGEGRID_ environment variables, and handling process-level
// concerns like exit codes. It translates them into the application's
// internal configuration.
package cli
