// Package session holds the mutable state of one engine run: caller inputs,
// the write-once result mapping, the cache of instantiated task handles and
// the started/stopped flags that guard a session against reuse.
package session
