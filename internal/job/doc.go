// package job implements the extraction job controller.
//
// A [Session] holds the wizard state across runs: the phase, the selected archive entries, the
// append-only frame log of the current run and its derived progress. A [Controller] starts runs
// against an [Extractor], consumes the streamed response on a background goroutine and applies
// each decoded frame to the session in arrival order.
//
// Cancellation is bound to a single run through a [Token]. [Controller.Cancel] commits the
// transition to [Failed] under the session lock, so it races safely with terminal frames: the
// first transition out of [Extracting] wins and anything the stream delivers afterwards is dropped.
package job
