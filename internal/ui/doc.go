// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a three step wizard over one [job.Session]:
//  1. [SelectView] : Browse archive entries and choose the selection
//  2. [ExtractView] : Follow the streamed log and progress, with cancellation
//  3. [ResultView] : Review the outcome, save the log, or reset for another run
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Session changes arrive through a [job.Session] subscription; the view always renders from a fresh snapshot, so
// dropped intermediate events only skip a redraw.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, c/esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
