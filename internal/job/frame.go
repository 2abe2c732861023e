package job

import (
	"time"

	"github.com/desertthunder/zipx/internal/stream"
)

// Frame is one decoded, classified line of a run's stream.
type Frame struct {
	Seq  int         // Arrival order within the run, starting at 1
	Kind stream.Kind // Semantic category
	Text string      // Payload without framing
	At   time.Time   // When the frame was applied
}

// CancelMessage is the frame appended when the user cancels a run.
const CancelMessage = "Aborted by user."

// Event is published to subscribers whenever a session changes.
type Event struct {
	RunID     uint64
	Phase     Phase
	Failure   Reason
	Completed int
	Total     int
	Percent   int
	Frame     *Frame // Set when the change was a frame being appended
}
