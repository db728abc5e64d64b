// Package inmemorystore provides the thread-safe, in-memory result mapping
// of one run. It is suitable for any scenario where results do not need to
// outlive the run that produced them.
package inmemorystore
