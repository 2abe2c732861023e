package job

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/zipx/internal/stream"
)

// State is a point-in-time copy of a [Session].
//
// Log shares storage with the session's append-only log and must be treated as read-only.
type State struct {
	Phase        Phase
	Failure      Reason
	RunID        uint64
	Archive      string
	Destination  string
	Selection    []string
	Log          []Frame
	Completed    int
	Total        int
	Percent      int
	ExtractionID string
	Message      string // Last surfaced error, if any
	StartedAt    time.Time
}

// Session is the long-lived aggregate behind the extraction wizard.
//
// It persists across runs: [Controller.Start] begins a run, the run ends in [Done] or [Failed],
// and [Session.Reset] returns to [Select] with a fresh run id. Every mutation checks the run id and
// phase under the session mutex, so the first transition out of [Extracting] wins and frames from a
// superseded run are dropped.
type Session struct {
	mu           sync.Mutex
	phase        Phase
	failure      Reason
	runID        uint64
	request      Request
	selection    []string
	log          []Frame
	progress     *Progress
	extractionID string
	message      string
	token        *Token
	startedAt    time.Time
	subscribers  map[int]chan Event
	nextSub      int
	now          func() time.Time
}

// NewSession returns a session in [Select] with an empty selection.
func NewSession() *Session {
	return &Session{
		phase:       Select,
		progress:    NewProgress(0),
		subscribers: make(map[int]chan Event),
		now:         time.Now,
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Phase:        s.phase,
		Failure:      s.failure,
		RunID:        s.runID,
		Archive:      s.request.Archive,
		Destination:  s.request.Destination,
		Selection:    slices.Clone(s.selection),
		Log:          s.log[:len(s.log):len(s.log)],
		Completed:    s.progress.Completed(),
		Total:        s.progress.Total(),
		Percent:      s.progress.Percent(),
		ExtractionID: s.extractionID,
		Message:      s.message,
		StartedAt:    s.startedAt,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// RunID returns the id of the current (or most recently retired) run.
func (s *Session) RunID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Selection returns the selected entry paths in selection order.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selection)
}

// SetSelection replaces the selection. Only allowed in [Select].
func (s *Session) SetSelection(paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Select {
		return fmt.Errorf("%w: selection is locked while %s", ErrInvalidPhase, s.phase)
	}

	s.selection = s.selection[:0]
	for _, p := range paths {
		if !slices.Contains(s.selection, p) {
			s.selection = append(s.selection, p)
		}
	}
	return nil
}

// Toggle adds path to the selection, or removes it if already selected, and reports whether it is
// selected afterwards. Only allowed in [Select].
func (s *Session) Toggle(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Select {
		return false, fmt.Errorf("%w: selection is locked while %s", ErrInvalidPhase, s.phase)
	}

	if i := slices.Index(s.selection, path); i >= 0 {
		s.selection = slices.Delete(s.selection, i, i+1)
		return false, nil
	}
	s.selection = append(s.selection, path)
	return true, nil
}

// Reset returns a finished session to [Select], clearing the selection, log and progress and
// retiring the run id. It fails with [ErrInvalidPhase] unless the phase is [Done] or [Failed].
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.Terminal() {
		return fmt.Errorf("%w: cannot reset while %s", ErrInvalidPhase, s.phase)
	}

	s.runID++
	s.phase = Select
	s.failure = NoReason
	s.request = Request{}
	s.selection = nil
	s.log = nil
	s.progress = NewProgress(0)
	s.extractionID = ""
	s.message = ""
	s.token = nil
	s.startedAt = time.Time{}
	s.publish(nil)
	return nil
}

// Subscribe registers a listener for session changes. Delivery never blocks the session: when the
// buffer is full the event is dropped, so listeners should read [Session.Snapshot] for full state.
// The returned function unsubscribes and closes the channel.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, buffer)
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// begin moves [Select] to [Extracting] for req, assigning a new run id bound to a fresh token.
func (s *Session) begin(req Request, cancel func()) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case Extracting:
		return nil, ErrRunActive
	case Done, Failed:
		return nil, fmt.Errorf("%w: reset before starting a new run", ErrInvalidPhase)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.runID++
	s.phase = Extracting
	s.failure = NoReason
	s.request = req
	s.selection = slices.Clone(req.Paths)
	s.log = nil
	s.progress = NewProgress(len(req.Paths))
	s.extractionID = ""
	s.message = ""
	s.token = NewToken(s.runID, cancel)
	s.startedAt = s.now()
	s.publish(nil)
	return s.token, nil
}

// active reports whether runID is the current run and still extracting. Callers hold s.mu.
func (s *Session) active(runID uint64) bool {
	return s.runID == runID && s.phase == Extracting
}

// attach records the remote extraction id once the stream is open. It returns false when the run
// has already ended, typically because it was cancelled while the request was in flight.
func (s *Session) attach(runID uint64, extractionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active(runID) {
		return false
	}
	s.extractionID = extractionID
	return true
}

// abandon handles a setup failure: the run never existed, so the session goes straight back to
// [Select] with the run id retired. The selection is kept so the caller can retry.
func (s *Session) abandon(runID uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active(runID) {
		return false
	}

	s.runID++
	s.phase = Select
	s.request = Request{}
	s.log = nil
	s.progress = NewProgress(0)
	s.token = nil
	s.startedAt = time.Time{}
	s.message = err.Error()
	s.publish(nil)
	return true
}

// apply appends one frame payload to the run's log and reports whether the run is still
// extracting afterwards. Payloads for stale runs are discarded.
func (s *Session) apply(runID uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active(runID) {
		return false
	}

	kind := stream.Classify(text)
	f := s.append(kind, text)
	s.progress.Observe(kind, text)

	switch {
	case kind == stream.Error && stream.IsFailure(text):
		s.phase = Failed
		s.failure = ServerError
		s.message = text
	case kind == stream.Meta && stream.IsJobEnd(text):
		s.phase = Done
	}

	s.publish(&f)
	return s.phase == Extracting
}

// finish handles a clean end of stream.
func (s *Session) finish(runID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active(runID) {
		return false
	}

	if s.progress.Completed() == s.progress.Total() {
		s.phase = Done
	} else {
		s.phase = Failed
		s.failure = NetworkError
		s.message = fmt.Sprintf("stream closed after %d of %d entries", s.progress.Completed(), s.progress.Total())
	}
	s.publish(nil)
	return true
}

// fail ends the run with reason, keeping the partial log.
func (s *Session) fail(runID uint64, reason Reason, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active(runID) {
		return false
	}

	s.phase = Failed
	s.failure = reason
	if err != nil {
		s.message = err.Error()
	}
	s.publish(nil)
	return true
}

// cancel ends the current run as [Cancelled], recording the cancellation in the log. It returns
// the run's token and remote extraction id, or ok=false when nothing is extracting.
func (s *Session) cancel() (token *Token, extractionID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Extracting {
		return nil, "", false
	}

	f := s.append(stream.Info, CancelMessage)
	s.phase = Failed
	s.failure = Cancelled
	s.publish(&f)
	return s.token, s.extractionID, true
}

// append adds a frame to the log. Callers hold s.mu.
func (s *Session) append(kind stream.Kind, text string) Frame {
	f := Frame{Seq: len(s.log) + 1, Kind: kind, Text: text, At: s.now()}
	s.log = append(s.log, f)
	return f
}

// publish notifies subscribers without blocking. Callers hold s.mu.
func (s *Session) publish(f *Frame) {
	if len(s.subscribers) == 0 {
		return
	}

	e := Event{
		RunID:     s.runID,
		Phase:     s.phase,
		Failure:   s.failure,
		Completed: s.progress.Completed(),
		Total:     s.progress.Total(),
		Percent:   s.progress.Percent(),
		Frame:     f,
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}
