// Package pool provides the bounded worker pool shared by every run of an
// engine.
//
// A pool runs at most Workers jobs at once and keeps at most QueueSize jobs
// waiting. Admission is checked when a job is submitted: once both the
// workers and the queue are taken, Submit fails immediately with
// ErrRejected instead of blocking the caller.
package pool
