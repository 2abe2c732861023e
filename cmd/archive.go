package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/zipx/internal/shared"
)

// archiveArg returns the archive argument, falling back to extract.archive from the config.
func (r *Runner) archiveArg(cmd *cli.Command) (string, error) {
	archive := cmd.StringArg("archive")
	if archive == "" {
		archive = r.config.Extract.Archive
	}
	if archive == "" {
		return "", fmt.Errorf("%w: archive is required (argument or extract.archive in config)", shared.ErrMissingArgument)
	}
	return archive, nil
}

// ArchiveList prints the entries of an archive.
func (r *Runner) ArchiveList(ctx context.Context, cmd *cli.Command) error {
	archive, err := r.archiveArg(cmd)
	if err != nil {
		return err
	}

	r.logger.Debug("listing archive", "archive", archive)
	listing, err := r.client.List(ctx, archive)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(listing, cmd.Bool("pretty"))
	}

	r.writePlainHeader(archive)
	for i, f := range listing.Files {
		r.writePlain("%4d. %s\n", i+1, f)
	}
	return r.writePlainln("%d entries", listing.Count)
}
