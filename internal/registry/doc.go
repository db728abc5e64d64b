// Package registry maps the implementation references used in arrangement
// files (e.g., "print" or "http_request") to zero-argument factories that
// build runnable tasks.
//
// The registry is populated once at process startup by the surrounding
// application, usually through Module values, and is then only read: the
// expression compiler calls Resolve for every task handle it instantiates.
package registry
