// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file (defaults to ./config.toml when present)",
	}
}

func serverFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Base URL of a running ytingest server",
		Sources: cli.EnvVars("YTINGEST_SERVER"),
	}
}

// serveCommand runs the HTTP API and the background pipeline
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the ingestion API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override server.port",
			},
		},
		Action: r.Serve,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the publish ledger",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the built-in template",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "path",
						UsageText: "Destination path (default: config.toml)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the ledger database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recently applied migration instead of migrating up",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// processCommand submits jobs to a running server
func processCommand(r *Runner) *cli.Command {
	collectionFlags := func() []cli.Flag {
		return []cli.Flag{
			serverFlag(),
			&cli.IntFlag{
				Name:  "skip",
				Usage: "Number of leading items to skip",
				Value: 0,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of items to process",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "Poll until the task finishes",
			},
		}
	}

	return &cli.Command{
		Name:    "process",
		Aliases: []string{"p"},
		Usage:   "Submit a video, playlist or channel for ingestion",
		Commands: []*cli.Command{
			{
				Name:  "video",
				Usage: "Process a single video",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Poll until the task finishes",
					},
				},
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "url",
						UsageText: "Video URL",
					},
				},
				Action: r.ProcessVideo,
			},
			{
				Name:  "playlist",
				Usage: "Process the items of a playlist",
				Flags: collectionFlags(),
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "url",
						UsageText: "Playlist URL or id",
					},
				},
				Action: r.ProcessPlaylist,
			},
			{
				Name:  "channel",
				Usage: "Process the uploads of a channel",
				Flags: collectionFlags(),
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "url",
						UsageText: "Channel URL, @handle or id",
					},
				},
				Action: r.ProcessChannel,
			},
		},
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the status of a task",
		Flags: []cli.Flag{
			serverFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "id",
				UsageText: "Task id",
			},
		},
		Action: r.Status,
	}
}

func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "List tasks known to the server",
		Flags: []cli.Flag{
			serverFlag(),
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only tasks with this status (processing, completed, failed)",
			},
			&cli.BoolFlag{
				Name:  "active",
				Usage: "Only tasks that are still processing",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Tasks,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Usage:   "Remove a task from the server",
		Flags:   []cli.Flag{serverFlag()},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "id",
				UsageText: "Task id",
			},
		},
		Action: r.Delete,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded item outcomes from the publish ledger",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "task",
				Usage: "Only rows written by this task",
			},
			&cli.StringFlag{
				Name:  "outcome",
				Usage: "Only rows with this outcome (success, exists, skipped_duration, error)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Only the newest N rows",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, markdown or json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write CSV to this file instead of stdout",
			},
		},
		Action: r.History,
	}
}

func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Open an interactive dashboard of server tasks",
		Flags: []cli.Flag{
			serverFlag(),
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Polling interval",
				Value: defaultPollInterval,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the dashboard owns the terminal",
				Value: "./tmp/ytingest-watch.log",
			},
		},
		Action: r.Watch,
	}
}
