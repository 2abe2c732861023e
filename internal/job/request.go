package job

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/zipx/internal/shared"
)

// DefaultDestination is used when a [Request] leaves Destination empty.
const DefaultDestination = "./extracted_files"

const (
	maxPathLength = 1000
	maxPaths      = 10000
)

// Request describes one extraction job. It is copied into the session when a run starts.
type Request struct {
	Archive     string   `json:"archive"`
	Paths       []string `json:"paths"`
	Destination string   `json:"destination"`
}

// Clone returns a deep copy of r.
func (r Request) Clone() Request {
	r.Paths = slices.Clone(r.Paths)
	return r
}

// Validate checks r against the limits enforced by the extraction service.
func (r Request) Validate() error {
	if r.Archive == "" {
		return fmt.Errorf("%w: archive is required", shared.ErrInvalidInput)
	}
	if len(r.Archive) > maxPathLength {
		return fmt.Errorf("%w: archive path is too long (max %d characters)", shared.ErrInvalidInput, maxPathLength)
	}
	if len(r.Paths) == 0 {
		return ErrEmptySelection
	}
	if len(r.Paths) > maxPaths {
		return fmt.Errorf("%w: too many entries selected (max %d)", shared.ErrInvalidInput, maxPaths)
	}

	seen := make(map[string]struct{}, len(r.Paths))
	for i, p := range r.Paths {
		switch {
		case p == "":
			return fmt.Errorf("%w: entry #%d is empty", shared.ErrInvalidInput, i+1)
		case len(p) > maxPathLength:
			return fmt.Errorf("%w: entry #%d is too long (max %d characters)", shared.ErrInvalidInput, i+1, maxPathLength)
		case hasTraversal(p):
			return fmt.Errorf("%w: entry #%d contains invalid characters: %s", shared.ErrInvalidInput, i+1, p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: entry %s selected twice", shared.ErrInvalidInput, p)
		}
		seen[p] = struct{}{}
	}

	return nil
}

func hasTraversal(p string) bool {
	return strings.Contains(p, "..") || strings.ContainsAny(p, "~|;`$&<>")
}
