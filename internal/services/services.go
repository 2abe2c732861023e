// package services defines the client for the remote archive extraction service
package services

import (
	"context"

	"github.com/desertthunder/zipx/internal/job"
)

// Client is the remote extraction service as seen by commands and the TUI.
type Client interface {
	job.Extractor

	// List returns the entries of an archive known to the service.
	List(ctx context.Context, archive string) (*Listing, error)
}

var _ Client = (*ExtractService)(nil)
