// Package orchestrator exposes the circulation use-cases.
//
// Every use-case builds one command (or a short chain of commands), runs it through the
// feature's command handler with strong consistency, logs the outcome and turns the appended
// events into patron notices. Results are typed per use-case; errors always carry one of the
// core error kinds, so core.KindOf yields a stable string for callers.
//
// Sweeps list their candidates with an eventually consistent query and then run one command
// per candidate. Failures of single candidates are logged and counted, never fatal.
package orchestrator
