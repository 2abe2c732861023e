package tasks

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/models"
)

// RunStore persists recorded runs. [repositories.RunRepository] implements it.
type RunStore interface {
	Create(run *models.Run) error
}

// Recorder writes finished runs to a [RunStore], once per run id.
type Recorder struct {
	store  RunStore
	logger *log.Logger

	mu       sync.Mutex
	recorded map[uint64]*models.Run
}

// NewRecorder creates a recorder backed by store. A nil logger discards output.
func NewRecorder(store RunStore, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{store: store, logger: logger, recorded: make(map[uint64]*models.Run)}
}

// Record persists st if it describes a finished run that has not been recorded yet.
// It returns the stored run, or nil when st was skipped.
func (r *Recorder) Record(st job.State) (*models.Run, error) {
	if !st.Phase.Terminal() {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if run, ok := r.recorded[st.RunID]; ok {
		return run, nil
	}

	run := models.NewRunFromState(st)
	if err := r.store.Create(run); err != nil {
		r.logger.Error("failed to record run", "run", st.RunID, "error", err)
		return nil, err
	}

	r.recorded[st.RunID] = run
	r.logger.Debug("run recorded", "run", st.RunID, "id", run.ID(), "phase", st.Phase, "failure", st.Failure)
	return run, nil
}

// Watch records every run of session that reaches a terminal phase until ctx is done.
// The subscription is in place when Watch returns; the returned channel closes once watching stops.
func (r *Recorder) Watch(ctx context.Context, session *job.Session) <-chan struct{} {
	events, unsubscribe := session.Subscribe(64)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if !ev.Phase.Terminal() {
					continue
				}

				st := session.Snapshot()
				if st.RunID != ev.RunID {
					continue
				}
				r.Record(st)
			}
		}
	}()
	return stopped
}
