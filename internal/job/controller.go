package job

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zipx/internal/stream"
)

const (
	defaultChunkSize     = 4096
	defaultCancelTimeout = 5 * time.Second
)

// Extractor opens extraction streams on the remote service.
type Extractor interface {
	// Open submits req and returns the streamed response. Errors returned here happen before any
	// frame is read and are reported as [SetupError].
	Open(ctx context.Context, req Request) (*Stream, error)
	// Cancel asks the service to stop the extraction with the given id.
	Cancel(ctx context.Context, extractionID string) error
}

// Stream is an open extraction response.
type Stream struct {
	ID   string        // Remote extraction id, may be empty
	Body io.ReadCloser // Newline-delimited frames
}

// Options configures a [Controller].
type Options struct {
	Logger        *log.Logger
	ChunkSize     int           // Read buffer size for the stream
	CancelTimeout time.Duration // Bound on the best-effort remote cancel
}

// Run is a handle to a started run.
type Run struct {
	ID   uint64
	done chan struct{}
}

// Done is closed once the run's read loop has stopped.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run's read loop stops or ctx is done.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Controller drives extraction runs for a single [Session].
type Controller struct {
	session       *Session
	extractor     Extractor
	logger        *log.Logger
	chunkSize     int
	cancelTimeout time.Duration
	notifying     sync.WaitGroup
}

// NewController creates a controller bound to session.
func NewController(session *Session, extractor Extractor, opts Options) *Controller {
	c := &Controller{
		session:       session,
		extractor:     extractor,
		logger:        opts.Logger,
		chunkSize:     opts.ChunkSize,
		cancelTimeout: opts.CancelTimeout,
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.chunkSize <= 0 {
		c.chunkSize = defaultChunkSize
	}
	if c.cancelTimeout <= 0 {
		c.cancelTimeout = defaultCancelTimeout
	}
	return c
}

// Session returns the session this controller mutates.
func (c *Controller) Session() *Session {
	return c.session
}

// Start submits req and begins streaming its frames into the session.
//
// Start returns once the stream is established; frames are applied on a background goroutine
// until the run ends. A failure before streaming returns a [*SetupError] and leaves the session in
// [Select] with the selection intact. If the run is cancelled while the request is in flight,
// Start returns the already finished run and a nil error.
func (c *Controller) Start(ctx context.Context, req Request) (*Run, error) {
	req = req.Clone()
	if req.Destination == "" {
		req.Destination = DefaultDestination
	}

	runCtx, cancel := context.WithCancel(ctx)
	token, err := c.session.begin(req, cancel)
	if err != nil {
		cancel()
		return nil, err
	}

	run := &Run{ID: token.RunID(), done: make(chan struct{})}
	logger := c.logger.With("run", run.ID, "archive", req.Archive)
	logger.Info("starting extraction", "entries", len(req.Paths), "destination", req.Destination)

	s, err := c.extractor.Open(runCtx, req)
	if err != nil {
		cancel()
		close(run.done)
		if !c.session.abandon(run.ID, err) {
			logger.Debug("request aborted after cancellation", "error", err)
			return run, nil
		}

		var setupErr *SetupError
		if !errors.As(err, &setupErr) {
			err = &SetupError{Err: err}
		}
		logger.Error("extraction did not start", "error", err)
		return nil, err
	}

	if !c.session.attach(run.ID, s.ID) {
		logger.Debug("run ended before the stream opened", "extraction_id", s.ID)
		s.Body.Close()
		cancel()
		close(run.done)
		c.notify(logger, s.ID)
		return run, nil
	}

	go func() {
		defer close(run.done)
		defer cancel()
		c.consume(logger.With("extraction_id", s.ID), run.ID, token, s)
	}()
	return run, nil
}

// Cancel stops the active run. It reports false, changing nothing, when no run is extracting.
//
// The run's token is signaled so the read loop stops at the next chunk boundary, and the
// service is asked to stop in the background. Errors from that request are logged and dropped.
func (c *Controller) Cancel() bool {
	token, id, ok := c.session.cancel()
	if !ok {
		return false
	}

	token.Signal()
	logger := c.logger.With("run", token.RunID())
	logger.Info("extraction cancelled")
	c.notify(logger, id)
	return true
}

// Reset returns a finished session to [Select].
func (c *Controller) Reset() error {
	return c.session.Reset()
}

// Wait blocks until outstanding remote cancel requests have returned.
func (c *Controller) Wait() {
	c.notifying.Wait()
}

func (c *Controller) notify(logger *log.Logger, extractionID string) {
	if extractionID == "" {
		return
	}

	c.notifying.Add(1)
	go func() {
		defer c.notifying.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.cancelTimeout)
		defer cancel()

		if err := c.extractor.Cancel(ctx, extractionID); err != nil {
			logger.Debug("remote cancel failed", "extraction_id", extractionID, "error", err)
		}
	}()
}

// consume reads s until the run ends, the stream closes or the token is signaled.
func (c *Controller) consume(logger *log.Logger, runID uint64, token *Token, s *Stream) {
	defer s.Body.Close()

	dec := stream.NewDecoder()
	buf := make([]byte, c.chunkSize)
	applied := 0

	deliver := func(line string) bool {
		payload, ok := stream.Payload(line)
		if !ok {
			return true
		}
		applied++
		return c.session.apply(runID, payload)
	}

	for {
		if token.Signaled() {
			logger.Debug("stopped reading after cancellation", "frames", applied, "dropped_bytes", dec.Buffered())
			return
		}

		n, err := s.Body.Read(buf)
		for _, line := range dec.Feed(buf[:n]) {
			if !deliver(line) {
				c.finished(logger, runID)
				return
			}
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			if line, ok := dec.Flush(); ok && !deliver(line) {
				c.finished(logger, runID)
				return
			}
			c.session.finish(runID)
			c.finished(logger, runID)
			return
		case token.Signaled():
			logger.Debug("read interrupted by cancellation", "dropped_bytes", dec.Buffered(), "error", err)
			return
		default:
			c.session.fail(runID, NetworkError, &StreamError{Frames: applied, Partial: dec.Buffered(), Err: err})
			c.finished(logger, runID)
			return
		}
	}
}

func (c *Controller) finished(logger *log.Logger, runID uint64) {
	st := c.session.Snapshot()
	if st.RunID != runID {
		return
	}

	switch st.Phase {
	case Done:
		logger.Info("extraction finished", "completed", st.Completed, "total", st.Total)
	case Failed:
		logger.Warn("extraction failed", "reason", st.Failure, "completed", st.Completed, "total", st.Total, "error", st.Message)
	}
}
