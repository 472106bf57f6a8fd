// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// syncCommand uploads an inventory file
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Aliases:   []string{"upload"},
		Usage:     "Upload records from an inventory CSV, skipping releases already in the collection",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
			&cli.BoolFlag{
				Name:  "delete-all",
				Usage: "Remove every release in the collection before uploading (same as DELETE_ALL_ITEMS_IN_COLLECTION=1)",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a run report to this path",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: json, csv, markdown or txt (default: from the report extension)",
			},
		},
		Action: r.Sync,
	}
}

// collectionCommand inspects or clears the remote collection
func collectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "collection",
		Usage: "Discogs collection operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List releases currently in the collection folder",
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
				Action: r.CollectionList,
			},
			{
				Name:  "clear",
				Usage: "Remove every release from the collection folder",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.CollectionClear,
			},
		},
	}
}

// historyCommand reads past runs from the history database
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past sync runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent sync runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show runs with this status (completed, partial, failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:      "show",
				Usage:     "Show one run and its per-record outcomes",
				ArgsUsage: "<run-id | #sequence>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Render as json, csv, markdown or txt instead of a table",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the history database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
