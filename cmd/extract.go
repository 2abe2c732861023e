package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/zipx/internal/formatter"
	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/shared"
	"github.com/desertthunder/zipx/internal/tasks"
)

// ExtractRun extracts the selected entries and prints the streamed log until the run ends.
//
// SIGINT and SIGTERM cancel the run; a cancelled run is not an error.
func (r *Runner) ExtractRun(ctx context.Context, cmd *cli.Command) error {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	return r.extract(ctx, cmd, interrupts)
}

func (r *Runner) extract(ctx context.Context, cmd *cli.Command, interrupts <-chan os.Signal) error {
	archive, err := r.archiveArg(cmd)
	if err != nil {
		return err
	}

	var format formatter.Format
	if f := cmd.String("format"); f != "" {
		if format, err = formatter.ParseFormat(f); err != nil {
			return err
		}
	}

	paths := cmd.StringSlice("paths")
	if cmd.Bool("all") {
		listing, err := r.client.List(ctx, archive)
		if err != nil {
			return fmt.Errorf("failed to list archive: %w", err)
		}
		paths = listing.Files
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: select entries with --paths or --all", shared.ErrMissingArgument)
	}

	dest := cmd.String("dest")
	if dest == "" {
		dest = r.config.Extract.Destination
	}

	ctrl := r.newController()
	session := ctrl.Session()
	if err := session.SetSelection(paths); err != nil {
		return err
	}

	events, unsubscribe := session.Subscribe(64)
	var printing sync.WaitGroup
	printing.Add(1)
	go func() {
		defer printing.Done()
		r.follow(session, events)
	}()

	run, err := ctrl.Start(ctx, job.Request{Archive: archive, Paths: session.Selection(), Destination: dest})
	if err != nil {
		unsubscribe()
		printing.Wait()
		return err
	}

	go func() {
		select {
		case <-interrupts:
			if ctrl.Cancel() {
				r.logger.Warn("cancelling extraction")
			}
		case <-run.Done():
		}
	}()

	if err := run.Wait(ctx); err != nil {
		ctrl.Cancel()
		<-run.Done()
	}
	ctrl.Wait()
	unsubscribe()
	printing.Wait()

	st := session.Snapshot()
	r.writePlainln("%s: %d/%d entries (%d%%)", formatter.Outcome(st.Phase, st.Failure), st.Completed, st.Total, st.Percent)

	if !cmd.Bool("no-history") {
		recorder, closeHistory := r.newRecorder()
		if recorder != nil {
			if rec, err := recorder.Record(st); err != nil {
				r.logger.Warn("run not recorded", "error", err)
			} else if rec != nil {
				r.logger.Info("run recorded", "id", rec.ID())
			}
		}
		closeHistory()
	}

	if out := cmd.String("log-out"); out != "" {
		if err := formatter.WriteExport(st, out, format); err != nil {
			return err
		}
		r.logger.Info("run log written", "path", out)
	}

	return runOutcome(st)
}

// follow prints frames as the session applies them until events is closed.
//
// Each frame is printed with the progress carried by its own event. Frames whose events were
// dropped are read back from a snapshot, and their progress is replayed from the frames before them.
func (r *Runner) follow(session *job.Session, events <-chan job.Event) {
	var (
		printed int
		replay  *job.Progress
	)

	emit := func(ev job.Event) {
		r.writePlain("%s\n", tasks.Update(ev))
		printed = ev.Frame.Seq
	}

	// catchUp prints the frames before seq that were never delivered; seq 0 means all of them.
	catchUp := func(seq int) {
		st := session.Snapshot()
		if replay == nil {
			replay = job.NewProgress(st.Total)
		}
		for _, f := range st.Log {
			if f.Seq <= printed || (seq > 0 && f.Seq >= seq) {
				continue
			}
			replay.Observe(f.Kind, f.Text)
			emit(job.Event{
				Phase:     st.Phase,
				Failure:   st.Failure,
				Completed: replay.Completed(),
				Total:     replay.Total(),
				Percent:   replay.Percent(),
				Frame:     &f,
			})
		}
	}

	for ev := range events {
		if ev.Frame == nil || ev.Frame.Seq <= printed {
			continue
		}
		if ev.Frame.Seq > printed+1 || replay == nil {
			catchUp(ev.Frame.Seq)
		}
		replay.Observe(ev.Frame.Kind, ev.Frame.Text)
		emit(ev)
	}
	catchUp(0)
}

// runOutcome maps a finished run onto the command's exit error. Cancelled runs are not errors.
func runOutcome(st job.State) error {
	if st.Phase != job.Failed || st.Failure == job.Cancelled {
		return nil
	}
	return fmt.Errorf("%w: extraction %s: %s", shared.ErrAPIRequest, formatter.Outcome(st.Phase, st.Failure), st.Message)
}

// ExtractCancel asks the service to stop an extraction by id.
func (r *Runner) ExtractCancel(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if err := r.client.Cancel(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel extraction: %w", err)
	}
	return r.writePlain("Cancellation requested for %s\n", id)
}
