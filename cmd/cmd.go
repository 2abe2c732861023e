// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand writes the config file and initialises the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the run history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// archiveCommand handles archive inspection
func archiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "archive",
		Aliases: []string{"zip"},
		Usage:   "Inspect archives known to the extraction service",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the entries of an archive",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "archive"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ArchiveList,
			},
		},
	}
}

// extractCommand handles extraction runs
func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Run and cancel extraction jobs",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Extract entries and follow the progress log (Ctrl-C cancels)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "archive"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "paths",
						Aliases: []string{"p"},
						Usage:   "Entries to extract",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Extract every entry of the archive",
					},
					&cli.StringFlag{
						Name:    "dest",
						Aliases: []string{"d"},
						Usage:   "Destination directory on the service host",
					},
					&cli.StringFlag{
						Name:    "log-out",
						Aliases: []string{"o"},
						Usage:   "Write the run log to this file",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Run log format: text, markdown, csv or json (default: from --log-out extension)",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "Do not record the run in the history database",
					},
				},
				Action: r.ExtractRun,
			},
			{
				Name:  "cancel",
				Usage: "Ask the service to stop an extraction",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Extraction ID (X-Extraction-ID of the run)",
						Required: true,
					},
				},
				Action: r.ExtractCancel,
			},
		},
	}
}

// historyCommand handles recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded extraction runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "archive",
				Usage: "Only runs of this archive",
			},
			&cli.StringFlag{
				Name:  "phase",
				Usage: "Only runs that ended in this phase (done or failed)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.HistoryList,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show one recorded run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Run ID",
						Required: true,
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Run ID",
						Required: true,
					},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// serveCommand runs the local extraction service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve zip archives from a local directory over the extraction API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Directory archives and destinations are resolved against (default: server.root)",
			},
			&cli.IntFlag{
				Name:  "line-delay",
				Usage: "Milliseconds spent per extracted entry (default: server.line_delay_ms)",
				Value: -1,
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive extraction.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive extraction wizard",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "archive"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dest",
				Aliases: []string{"d"},
				Usage:   "Destination directory on the service host",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the TUI owns the terminal",
				Value: "./tmp/zipx-tui.log",
			},
		},
		Action: r.TUI,
	}
}
