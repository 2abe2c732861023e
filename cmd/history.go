package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/zipx/internal/formatter"
	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/models"
	"github.com/desertthunder/zipx/internal/shared"
)

// runView is the JSON form of a recorded run.
type runView struct {
	ID           string    `json:"id"`
	Sequence     int       `json:"sequence"`
	Archive      string    `json:"archive"`
	Destination  string    `json:"destination"`
	ExtractionID string    `json:"extractionId,omitempty"`
	Phase        string    `json:"phase"`
	Failure      string    `json:"failure,omitempty"`
	Message      string    `json:"message,omitempty"`
	Completed    int       `json:"completed"`
	Total        int       `json:"total"`
	Percent      int       `json:"percent"`
	Frames       int       `json:"frames"`
	Paths        []string  `json:"paths"`
	StartedAt    time.Time `json:"startedAt"`
}

func newRunView(run *models.Run) runView {
	return runView{
		ID:           run.ID(),
		Sequence:     run.Sequence(),
		Archive:      run.Archive(),
		Destination:  run.Destination(),
		ExtractionID: run.ExtractionID(),
		Phase:        run.Phase().String(),
		Failure:      run.Failure().String(),
		Message:      run.Message(),
		Completed:    run.Completed(),
		Total:        run.Total(),
		Percent:      run.Percent(),
		Frames:       run.Frames(),
		Paths:        run.Paths(),
		StartedAt:    run.StartedAt(),
	}
}

// HistoryList prints recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{
		"archive": cmd.String("archive"),
		"limit":   int(cmd.Int("limit")),
	}
	if phase := cmd.String("phase"); phase != "" {
		if _, ok := job.ParsePhase(phase); !ok {
			return fmt.Errorf("%w: unknown phase %q", shared.ErrInvalidFlag, phase)
		}
		criteria["phase"] = phase
	}

	repo, closeHistory, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	runs, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		views := make([]runView, len(runs))
		for i, run := range runs {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No recorded runs\n")
	}

	r.writePlain("%-4s  %-36s  %-20s  %-24s  %-9s  %s\n", "SEQ", "ID", "ARCHIVE", "OUTCOME", "ENTRIES", "STARTED")
	for _, run := range runs {
		r.writePlain("%-4d  %-36s  %-20s  %-24s  %-9s  %s\n",
			run.Sequence(),
			run.ID(),
			run.Archive(),
			formatter.Outcome(run.Phase(), run.Failure()),
			fmt.Sprintf("%d/%d", run.Completed(), run.Total()),
			run.StartedAt().Local().Format(time.DateTime),
		)
	}
	return nil
}

// HistoryShow prints one recorded run.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	repo, closeHistory, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	run, err := repo.Get(cmd.String("id"))
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Run %d (%s)", run.Sequence(), run.ID()))
	r.writePlain("Archive:      %s\n", run.Archive())
	r.writePlain("Destination:  %s\n", run.Destination())
	r.writePlain("Outcome:      %s\n", formatter.Outcome(run.Phase(), run.Failure()))
	r.writePlain("Progress:     %d/%d (%d%%)\n", run.Completed(), run.Total(), run.Percent())
	r.writePlain("Frames:       %d\n", run.Frames())
	if run.ExtractionID() != "" {
		r.writePlain("Extraction:   %s\n", run.ExtractionID())
	}
	if run.Message() != "" {
		r.writePlain("Message:      %s\n", run.Message())
	}
	r.writePlain("Started:      %s\n", run.StartedAt().Local().Format(time.DateTime))

	r.writePlainln("Entries:")
	for _, p := range run.Paths() {
		r.writePlain("  • %s\n", p)
	}
	return nil
}

// HistoryDelete removes a recorded run.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	repo, closeHistory, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	id := cmd.String("id")
	if err := repo.Delete(id); err != nil {
		return err
	}
	return r.writePlain("Deleted run %s\n", id)
}
