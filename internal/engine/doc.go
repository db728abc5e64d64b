// Package engine runs arrangements.
//
// An arrangement is a list of stages. Stage 0 is the pre-stage and runs to
// completion first. With two or more stages the last one is the post-stage
// and runs after everything else; every stage in between is launched at
// once and all of them are awaited before the post-stage starts.
//
// Inside a stage, tasks run on the engine's bounded worker pool as soon as
// every task they depend on has completed. A task whose dependency failed
// is never executed and fails in turn. A failure in a stage ends the run
// once that stage has been joined; no later stage is started.
package engine
