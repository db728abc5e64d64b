// Package task defines the contract every task implementation follows and
// the per-invocation lifecycle the engine drives through a Handle: deferred
// parameter substitution, the retry loop, the post-hoc timeout check, result
// validation and first-write-wins result storage.
package task
