package job

import (
	"math"

	"github.com/desertthunder/zipx/internal/stream"
)

// Progress derives a completion percentage from success frames.
//
// Each distinct success payload counts once and the count never exceeds the selection size,
// so the percentage is monotonic within a run.
type Progress struct {
	total     int
	completed int
	seen      map[string]struct{}
}

// NewProgress returns an aggregator for a selection of total entries.
func NewProgress(total int) *Progress {
	return &Progress{total: total, seen: make(map[string]struct{})}
}

// Observe records a frame and returns the updated percentage.
func (p *Progress) Observe(kind stream.Kind, text string) int {
	if kind != stream.Success || p.completed >= p.total {
		return p.Percent()
	}
	if _, dup := p.seen[text]; dup {
		return p.Percent()
	}
	p.seen[text] = struct{}{}
	p.completed++
	return p.Percent()
}

// Completed returns the number of entries reported done.
func (p *Progress) Completed() int {
	return p.completed
}

// Total returns the selection size.
func (p *Progress) Total() int {
	return p.total
}

// Percent returns round(completed / total * 100) clamped to [0, 100].
func (p *Progress) Percent() int {
	return Percent(p.completed, p.total)
}

// Percent returns round(completed / total * 100) clamped to [0, 100], or 0 when total is not positive.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	return min(max(pct, 0), 100)
}
