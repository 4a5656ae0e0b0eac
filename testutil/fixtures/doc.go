// Package fixtures builds circulation histories for tests.
//
// Builders return core events with sensible defaults (a "good" copy worth 2000, dates relative
// to Now) so that decide tests read as a list of facts. Given appends events to an event store
// for command handler and orchestrator tests.
//
// This is testing infrastructure, not production domain code.
package fixtures
