package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/shared"
	"github.com/desertthunder/zipx/internal/tasks"
	"github.com/desertthunder/zipx/internal/ui"
)

// TUI launches the interactive extraction wizard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	archive, err := r.archiveArg(cmd)
	if err != nil {
		return err
	}

	dest := cmd.String("dest")
	if dest == "" {
		dest = r.config.Extract.Destination
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	recorder, closeHistory := r.newRecorder()
	defer closeHistory()

	ctrl := r.newController()
	stopHistory := r.watchHistory(ctx, recorder, ctrl)

	model := ui.NewModel(ctx, r.client, ctrl, ui.Options{
		Archive:     archive,
		Destination: dest,
		SettleDelay: r.config.UI.SettleDelay(),
		Logger:      r.logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	stopHistory()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// watchHistory records every run of ctrl's session as it finishes. The returned stop func waits
// for pending remote cancels, stops watching and records the final run in case its event was
// dropped. A nil recorder records nothing.
func (r *Runner) watchHistory(ctx context.Context, recorder *tasks.Recorder, ctrl *job.Controller) func() {
	if recorder == nil {
		return ctrl.Wait
	}

	ctx, cancel := context.WithCancel(ctx)
	stopped := recorder.Watch(ctx, ctrl.Session())

	return func() {
		ctrl.Wait()
		cancel()
		<-stopped
		if _, err := recorder.Record(ctrl.Session().Snapshot()); err != nil {
			r.logger.Warn("run not recorded", "error", err)
		}
	}
}
