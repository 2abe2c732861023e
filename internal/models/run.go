package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/shared"
)

// Run is the recorded outcome of one extraction run.
type Run struct {
	id           string
	sequence     int
	archive      string
	destination  string
	extractionID string
	phase        job.Phase
	failure      job.Reason
	message      string
	completed    int
	total        int
	frames       int
	paths        []string
	startedAt    time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewRun creates an unsaved record for a run over paths.
func NewRun(archive, destination string, paths []string) *Run {
	now := time.Now()
	return &Run{
		archive:     archive,
		destination: destination,
		phase:       job.Extracting,
		paths:       slices.Clone(paths),
		total:       len(paths),
		startedAt:   now,
		createdAt:   now,
		updatedAt:   now,
	}
}

// NewRunFromState records a finished session state.
func NewRunFromState(st job.State) *Run {
	r := NewRun(st.Archive, st.Destination, st.Selection)
	r.Apply(st)
	if !st.StartedAt.IsZero() {
		r.startedAt = st.StartedAt
	}
	return r
}

// Apply copies the outcome fields of st onto r.
func (r *Run) Apply(st job.State) {
	r.extractionID = st.ExtractionID
	r.phase = st.Phase
	r.failure = st.Failure
	r.message = st.Message
	r.completed = st.Completed
	r.total = st.Total
	r.frames = len(st.Log)
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) Archive() string { return r.archive }
func (r *Run) Destination() string { return r.destination }
func (r *Run) ExtractionID() string { return r.extractionID }
func (r *Run) Phase() job.Phase { return r.phase }
func (r *Run) Failure() job.Reason { return r.failure }
func (r *Run) Message() string { return r.message }
func (r *Run) Completed() int { return r.completed }
func (r *Run) Total() int { return r.total }
func (r *Run) Frames() int { return r.frames }
func (r *Run) Paths() []string { return slices.Clone(r.paths) }
func (r *Run) StartedAt() time.Time { return r.startedAt }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }
func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Percent returns the completion percentage recorded for the run.
func (r *Run) Percent() int {
	return job.Percent(r.completed, r.total)
}

// Validate checks the record before it is written.
func (r *Run) Validate() error {
	switch {
	case r.archive == "":
		return fmt.Errorf("%w: archive is required", shared.ErrInvalidInput)
	case len(r.paths) == 0:
		return fmt.Errorf("%w: run has no entries", shared.ErrInvalidInput)
	case r.completed < 0 || r.completed > r.total:
		return fmt.Errorf("%w: completed %d out of range for %d entries", shared.ErrInvalidInput, r.completed, r.total)
	case r.failure != job.NoReason && r.phase != job.Failed:
		return fmt.Errorf("%w: failure %s recorded for %s run", shared.ErrInvalidInput, r.failure, r.phase)
	}
	return nil
}

// Record is the storage form of a [Run], with phase and failure as their string names.
type Record struct {
	ID           string
	Sequence     int
	Archive      string
	Destination  string
	ExtractionID string
	Phase        string
	Failure      string
	Message      string
	Completed    int
	Total        int
	Frames       int
	Paths        []string
	StartedAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Run rebuilds the record read back from storage.
func (rec Record) Run() (*Run, error) {
	phase, ok := job.ParsePhase(rec.Phase)
	if !ok {
		return nil, fmt.Errorf("%w: unknown phase %q", shared.ErrInvalidInput, rec.Phase)
	}
	failure, ok := job.ParseReason(rec.Failure)
	if !ok {
		return nil, fmt.Errorf("%w: unknown failure reason %q", shared.ErrInvalidInput, rec.Failure)
	}

	return &Run{
		id:           rec.ID,
		sequence:     rec.Sequence,
		archive:      rec.Archive,
		destination:  rec.Destination,
		extractionID: rec.ExtractionID,
		phase:        phase,
		failure:      failure,
		message:      rec.Message,
		completed:    rec.Completed,
		total:        rec.Total,
		frames:       rec.Frames,
		paths:        rec.Paths,
		startedAt:    rec.StartedAt,
		createdAt:    rec.CreatedAt,
		updatedAt:    rec.UpdatedAt,
		deletedAt:    rec.DeletedAt,
	}, nil
}
