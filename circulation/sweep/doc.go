// Package sweep runs the time-driven sweeps of the circulation engine.
//
// A Scheduler owns one ticker loop per Job. A tick that arrives while the previous run
// of the same job is still busy is skipped. Runs get the scheduler's context, so
// cancelling it stops the loops and lets in-flight sweeps wind down at the next
// candidate boundary.
package sweep
