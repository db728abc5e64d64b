// Package dag holds the dependency graph of one arrangement stage: task
// nodes, the back-references to the nodes each one depends on, and cycle
// detection over them. The graph is pure data; scheduling lives in the
// engine package.
package dag
