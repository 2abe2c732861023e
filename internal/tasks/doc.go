// Package tasks runs the background work that follows an extraction session.
//
// # History
//
// [Recorder] persists each finished run exactly once. Commands call [Recorder.Record] with the
// session snapshot after a run ends; [Recorder.Watch] does the same from a session subscription
// for long lived sessions such as the TUI.
//
// # Progress Reporting
//
// [Update] condenses a [job.Event] into the counters and message a CLI prints for each change.
// Subscriptions never block the controller, so a slow consumer may miss intermediate events; the
// final state is always available from the session snapshot.
package tasks
