package tasks

import (
	"fmt"

	"github.com/desertthunder/zipx/internal/job"
)

// ProgressUpdate is the printable form of a [job.Event].
type ProgressUpdate struct {
	Phase   job.Phase
	Step    int    // Entries completed
	Total   int    // Entries selected
	Percent int    // 0 to 100
	Message string // Human-readable message for display
}

// Update condenses ev. Frame events carry the frame text; phase changes describe the outcome.
func Update(ev job.Event) ProgressUpdate {
	u := ProgressUpdate{
		Phase:   ev.Phase,
		Step:    ev.Completed,
		Total:   ev.Total,
		Percent: ev.Percent,
	}

	switch {
	case ev.Frame != nil:
		u.Message = ev.Frame.Text
	case ev.Phase == job.Extracting:
		u.Message = fmt.Sprintf("Extracting %d entries...", ev.Total)
	case ev.Phase == job.Done:
		u.Message = "Extraction finished"
	case ev.Phase == job.Failed:
		u.Message = fmt.Sprintf("Extraction failed (%s)", ev.Failure)
	default:
		u.Message = "Ready"
	}
	return u
}

// String renders u as a single progress line, e.g. "[1/2] 50% ✓ Done: a.txt".
func (u ProgressUpdate) String() string {
	return fmt.Sprintf("[%d/%d] %3d%% %s", u.Step, u.Total, u.Percent, u.Message)
}
