package job

import (
	"context"
	"sync"
)

// Token is the cancellation signal of exactly one run.
//
// Once signaled it stays signaled; signaling again has no effect. Tokens of other runs are unaffected.
type Token struct {
	runID  uint64
	once   sync.Once
	done   chan struct{}
	cancel context.CancelFunc
}

// NewToken binds a token to runID. cancel, when non-nil, is invoked on the first [Token.Signal] so
// blocked reads of the run's request return promptly.
func NewToken(runID uint64, cancel context.CancelFunc) *Token {
	return &Token{runID: runID, done: make(chan struct{}), cancel: cancel}
}

// RunID returns the run this token belongs to.
func (t *Token) RunID() uint64 {
	return t.runID
}

// Signal marks the token as cancelled.
func (t *Token) Signal() {
	t.once.Do(func() {
		close(t.done)
		if t.cancel != nil {
			t.cancel()
		}
	})
}

// Signaled reports whether [Token.Signal] has been called.
func (t *Token) Signaled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
