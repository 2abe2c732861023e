package main

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/server"
	"github.com/desertthunder/zipx/internal/services"
	"github.com/desertthunder/zipx/internal/shared"
	tu "github.com/desertthunder/zipx/internal/testing"
)

var successFrames = []string{
	"Starting extraction of 2 file(s)...",
	"Extracting: a.txt",
	"✓ Done: a.txt",
	"Extracting: b.txt",
	"✓ Done: b.txt",
	"All files extracted successfully.",
}

func TestArchiveList(t *testing.T) {
	client := &tu.MockClient{Files: []string{"a.txt", "docs/b.md"}}

	t.Run("Plain", func(t *testing.T) {
		runner, output := testRunner(t, client)
		if err := runApp(runner, "archive", "list", "bundle.zip"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		for _, want := range []string{"bundle.zip", "   1. a.txt", "   2. docs/b.md", "2 entries"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		runner, output := testRunner(t, client)
		if err := runApp(runner, "archive", "list", "--json", "bundle.zip"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		var listing services.Listing
		if err := json.Unmarshal(output.Bytes(), &listing); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if listing.Count != 2 {
			t.Errorf("expected 2 entries, got %d", listing.Count)
		}
	})

	t.Run("Archive From Config", func(t *testing.T) {
		runner, output := testRunner(t, client)
		runner.config.Extract.Archive = "configured.zip"
		if err := runApp(runner, "archive", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "configured.zip") {
			t.Errorf("expected configured archive, got %q", output.String())
		}
	})

	t.Run("Missing Archive", func(t *testing.T) {
		runner, _ := testRunner(t, client)
		if err := runApp(runner, "archive", "list"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestExtractRun(t *testing.T) {
	t.Run("Done", func(t *testing.T) {
		client := &tu.MockClient{Frames: successFrames, ID: "ext-1"}
		runner, output := testRunner(t, client)

		err := runApp(runner, "extract", "run", "--paths", "a.txt", "--paths", "b.txt", "bundle.zip")
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		out := output.String()
		for _, want := range []string{"✓ Done: a.txt", "✓ Done: b.txt", "done: 2/2 entries (100%)"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}

		reqs := client.Requests()
		if len(reqs) != 1 || reqs[0].Destination != "out" || len(reqs[0].Paths) != 2 {
			t.Errorf("unexpected requests %+v", reqs)
		}
	})

	t.Run("All Entries", func(t *testing.T) {
		client := &tu.MockClient{Files: []string{"a.txt", "b.txt"}, Frames: successFrames}
		runner, _ := testRunner(t, client)

		if err := runApp(runner, "extract", "run", "--all", "--dest", "elsewhere", "bundle.zip"); err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		reqs := client.Requests()
		if len(reqs) != 1 || len(reqs[0].Paths) != 2 || reqs[0].Destination != "elsewhere" {
			t.Errorf("unexpected requests %+v", reqs)
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		client := &tu.MockClient{Frames: []string{"Extracting: a.txt", "ERROR: disk full"}}
		runner, output := testRunner(t, client)

		err := runApp(runner, "extract", "run", "--paths", "a.txt", "bundle.zip")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(output.String(), "failed (server_error)") {
			t.Errorf("expected server error outcome, got:\n%s", output.String())
		}
	})

	t.Run("Setup Error", func(t *testing.T) {
		client := &tu.MockClient{OpenErr: shared.ErrServiceUnavailable}
		runner, _ := testRunner(t, client)

		err := runApp(runner, "extract", "run", "--paths", "a.txt", "bundle.zip")
		var setupErr *job.SetupError
		if !errors.As(err, &setupErr) {
			t.Errorf("expected SetupError, got %v", err)
		}
	})

	t.Run("Requires A Selection", func(t *testing.T) {
		runner, _ := testRunner(t, &tu.MockClient{})
		err := runApp(runner, "extract", "run", "bundle.zip")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Unknown Log Format", func(t *testing.T) {
		runner, _ := testRunner(t, &tu.MockClient{})
		err := runApp(runner, "extract", "run", "--paths", "a.txt", "--format", "xml", "bundle.zip")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Writes Run Log", func(t *testing.T) {
		client := &tu.MockClient{Frames: successFrames}
		runner, _ := testRunner(t, client)
		path := filepath.Join(t.TempDir(), "run.csv")

		if err := runApp(runner, "extract", "run", "--paths", "a.txt", "--paths", "b.txt", "--log-out", path, "bundle.zip"); err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Seq,Time,Kind,Text") || strings.Count(content, "\n") != 7 {
			t.Errorf("unexpected run log:\n%s", content)
		}
	})

	t.Run("Interrupt Cancels", func(t *testing.T) {
		client := &tu.MockClient{Frames: successFrames[:3], ID: "ext-7", Hold: true}
		runner, output := testRunner(t, client)

		interrupts := make(chan os.Signal, 1)
		interrupts <- os.Interrupt

		cmd := extractCommand(runner).Commands[0]
		cmd.Action = func(ctx context.Context, c *cli.Command) error {
			return runner.extract(ctx, c, interrupts)
		}
		cmd.Writer = io.Discard

		err := cmd.Run(context.Background(), []string{"run", "--paths", "a.txt", "--paths", "b.txt", "bundle.zip"})
		if err != nil {
			t.Fatalf("cancelled run should not fail: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, job.CancelMessage) || !strings.Contains(out, "failed (cancelled)") {
			t.Errorf("expected cancellation in output:\n%s", out)
		}
		if got := client.Cancelled(); len(got) != 1 || got[0] != "ext-7" {
			t.Errorf("expected remote cancel of ext-7, got %v", got)
		}
	})
}

func TestFollow(t *testing.T) {
	runner, output := testRunner(t, &tu.MockClient{Frames: successFrames})
	ctrl := runner.newController()
	finishRun(t, ctrl, "a.txt", "b.txt")
	log := ctrl.Session().Snapshot().Log

	frameEvent := func(seq, completed, percent int) job.Event {
		f := log[seq-1]
		return job.Event{Phase: job.Extracting, Completed: completed, Total: 2, Percent: percent, Frame: &f}
	}

	t.Run("Prints Progress Of Each Frame", func(t *testing.T) {
		output.Reset()
		events := make(chan job.Event, 8)
		for i, completed := range []int{0, 0, 1, 1, 2, 2} {
			events <- frameEvent(i+1, completed, completed*50)
		}
		close(events)

		runner.follow(ctrl.Session(), events)

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 6 {
			t.Fatalf("expected 6 lines, got %q", output.String())
		}
		if lines[3] != "[1/2]  50% Extracting: b.txt" {
			t.Errorf("expected progress as applied, got %q", lines[3])
		}
	})

	t.Run("Replays Dropped Frames", func(t *testing.T) {
		output.Reset()
		events := make(chan job.Event, 8)
		events <- frameEvent(5, 2, 100)
		events <- frameEvent(2, 0, 0)
		close(events)

		runner.follow(ctrl.Session(), events)

		want := []string{
			"[0/2]   0% Starting extraction of 2 file(s)...",
			"[0/2]   0% Extracting: a.txt",
			"[1/2]  50% ✓ Done: a.txt",
			"[1/2]  50% Extracting: b.txt",
			"[2/2] 100% ✓ Done: b.txt",
			"[2/2] 100% All files extracted successfully.",
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != len(want) {
			t.Fatalf("expected %d lines, got %q", len(want), output.String())
		}
		for i := range want {
			if lines[i] != want[i] {
				t.Errorf("line %d: expected %q, got %q", i+1, want[i], lines[i])
			}
		}
	})
}

func TestExtractCancel(t *testing.T) {
	t.Run("Sends Id", func(t *testing.T) {
		client := &tu.MockClient{}
		runner, output := testRunner(t, client)

		if err := runApp(runner, "extract", "cancel", "--id", "ext-3"); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if got := client.Cancelled(); len(got) != 1 || got[0] != "ext-3" {
			t.Errorf("expected cancel of ext-3, got %v", got)
		}
		if !strings.Contains(output.String(), "Cancellation requested for ext-3") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("Unknown Id", func(t *testing.T) {
		runner, _ := testRunner(t, &tu.MockClient{CancelErr: shared.ErrRunNotFound})
		if err := runApp(runner, "extract", "cancel", "--id", "nope"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

func TestHistory(t *testing.T) {
	client := &tu.MockClient{Frames: successFrames}
	runner, output := testRunner(t, client)

	if err := runApp(runner, "extract", "run", "--paths", "a.txt", "--paths", "b.txt", "bundle.zip"); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if err := runApp(runner, "extract", "run", "--no-history", "--paths", "a.txt", "--paths", "b.txt", "bundle.zip"); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var runs []runView
	t.Run("List", func(t *testing.T) {
		output.Reset()
		if err := runApp(runner, "history", "--json"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if err := json.Unmarshal(output.Bytes(), &runs); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 recorded run, got %d", len(runs))
		}
		if runs[0].Phase != "done" || runs[0].Percent != 100 || runs[0].Frames != 6 {
			t.Errorf("unexpected run %+v", runs[0])
		}
	})

	t.Run("Plain List", func(t *testing.T) {
		output.Reset()
		if err := runApp(runner, "history", "--phase", "done"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output.String(), "bundle.zip") || !strings.Contains(output.String(), "2/2") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("Unknown Phase", func(t *testing.T) {
		if err := runApp(runner, "history", "--phase", "paused"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Show", func(t *testing.T) {
		if len(runs) == 0 {
			t.Skip("no recorded run")
		}
		output.Reset()
		if err := runApp(runner, "history", "show", "--id", runs[0].ID); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		if !strings.Contains(output.String(), "Outcome:      done") || !strings.Contains(output.String(), "• b.txt") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if len(runs) == 0 {
			t.Skip("no recorded run")
		}
		if err := runApp(runner, "history", "delete", "--id", runs[0].ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := runApp(runner, "history", "show", "--id", runs[0].ID); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound after delete, got %v", err)
		}

		output.Reset()
		if err := runApp(runner, "history"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output.String(), "No recorded runs") {
			t.Errorf("expected empty history, got:\n%s", output.String())
		}
	})
}

func TestExtractAgainstService(t *testing.T) {
	root := t.TempDir()
	f, err := os.Create(filepath.Join(root, "bundle.zip"))
	if err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{"a.txt": "alpha", "b.txt": "beta"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		io.WriteString(w, body)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	f.Close()

	handler := server.NewExtractHandler(server.ZipCatalog{Root: root}, root, 0, shared.NewLogger(io.Discard))
	srv := httptest.NewServer(server.NewRouter(handler, "secret"))
	defer srv.Close()

	runner, output := testRunner(t, nil)
	runner.config.Service.BaseURL = srv.URL
	runner.config.Service.Token = "secret"
	runner.client = newClient(runner.config.Service, runner.logger)

	if err := runApp(runner, "extract", "run", "--all", "--dest", "out", "bundle.zip"); err != nil {
		t.Fatalf("extract failed: %v\n%s", err, output.String())
	}

	if !strings.Contains(output.String(), "done: 2/2 entries (100%)") {
		t.Errorf("expected completed run, got:\n%s", output.String())
	}
	if got := tu.MustReadFile(t, filepath.Join(root, "out", "b.txt")); got != "beta" {
		t.Errorf("expected extracted b.txt, got %q", got)
	}
}
