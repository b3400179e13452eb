// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// boardFlag selects the board to operate on. Accepts a short id or a board URL.
func boardFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "board",
		Aliases: []string{"b"},
		Usage:   "Board short id or URL (defaults to trello.board)",
		Sources: cli.EnvVars("TBX_BOARD"),
	}
}

func labelFlag(usage string) cli.Flag {
	return &cli.StringSliceFlag{
		Name:     "label",
		Aliases:  []string{"l"},
		Usage:    usage,
		Required: true,
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, yaml or csv",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
	}
}

// runFlags returns the flags shared by every bulk operation.
func runFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Preview changes without writing (defaults to run.dry_run; pass --dry-run=false to apply)",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Maximum number of concurrent writes (defaults to run.concurrency)",
		},
		&cli.FloatFlag{
			Name:  "rate-limit",
			Usage: "Maximum writes per second, 0 for unlimited (defaults to run.rate_limit)",
		},
		&cli.BoolFlag{
			Name:  "journal",
			Usage: "Record the run in the journal database (defaults to database.journal)",
		},
		&cli.BoolFlag{
			Name:    "interactive",
			Aliases: []string{"i"},
			Usage:   "Review the plan in a terminal UI before applying it",
		},
		&cli.StringSliceFlag{
			Name:  "in-list",
			Usage: "Only include cards in this list (repeatable)",
		},
		&cli.StringFlag{
			Name:  "match",
			Usage: "Only include cards whose name matches this regular expression",
		},
		&cli.StringSliceFlag{
			Name:  "skip-label",
			Usage: "Exclude cards carrying this label name (repeatable)",
		},
	}
	return append(flags, outputFlags()...)
}

func withFlags(flags ...any) []cli.Flag {
	out := []cli.Flag{}
	for _, f := range flags {
		switch f := f.(type) {
		case cli.Flag:
			out = append(out, f)
		case []cli.Flag:
			out = append(out, f...)
		}
	}
	return out
}

// labelsCommand handles label operations
func labelsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "labels",
		Usage: "Label operations",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add labels to every card of a board",
				Flags:  withFlags(boardFlag(), labelFlag("Label name to add (repeatable)"), runFlags()),
				Action: r.LabelsAdd,
			},
		},
	}
}

// cardsCommand handles card copy, archive and delete operations
func cardsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cards",
		Usage: "Card operations",
		Commands: []*cli.Command{
			{
				Name:  "copy",
				Usage: "Copy every card into the list of the same name on another board",
				Flags: withFlags(
					boardFlag(),
					&cli.StringFlag{
						Name:     "target-board",
						Aliases:  []string{"t"},
						Usage:    "Target board short id or URL",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "map-list",
						Aliases: []string{"m"},
						Usage:   "Map a source list to a target list as SOURCE=TARGET (repeatable, merged over copy.lists)",
					},
					&cli.StringSliceFlag{
						Name:  "keep",
						Usage: "Card field to keep from the source (repeatable, defaults to run.keep_from_source)",
					},
					runFlags(),
				),
				Action: r.CardsCopy,
			},
			{
				Name:   "archive",
				Usage:  "Archive every card carrying one of the labels",
				Flags:  withFlags(boardFlag(), labelFlag("Label name selecting cards (repeatable)"), runFlags()),
				Action: r.CardsArchive,
			},
			{
				Name:  "delete",
				Usage: "Archive or permanently delete every card carrying one of the labels",
				Flags: withFlags(
					boardFlag(),
					labelFlag("Label name selecting cards (repeatable)"),
					&cli.StringFlag{
						Name:  "action",
						Usage: "archive or delete",
						Value: "archive",
					},
					runFlags(),
				),
				Action: r.CardsDelete,
			},
		},
	}
}

// boardCommand handles board inspection
func boardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Inspect a board",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List the lists, labels and card counts of a board",
				Flags:  withFlags(boardFlag(), outputFlags()),
				Action: r.BoardShow,
			},
			{
				Name:  "raw",
				Usage: "Print the raw board response, for debugging",
				Flags: withFlags(
					boardFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				),
				Action: r.BoardRaw,
			},
		},
	}
}

// runsCommand handles the run journal
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect the run journal",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs",
				Flags: withFlags(
					&cli.StringFlag{
						Name:  "operation",
						Usage: "Only show runs of this operation, e.g. \"labels add\"",
					},
					&cli.StringFlag{
						Name:  "board",
						Usage: "Only show runs touching this board",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Show only the most recent runs",
						Value: 20,
					},
					outputFlags(),
				),
				Action: r.RunsList,
			},
			{
				Name:      "show",
				Usage:     "Show a run and its card errors",
				ArgsUsage: "<run number or id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Flags:  outputFlags(),
				Action: r.RunsShow,
			},
			{
				Name:      "delete",
				Usage:     "Remove a run from the journal",
				ArgsUsage: "<run number or id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Action: r.RunsDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration, database and authentication.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml populated with defaults",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the run journal database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "auth",
				Usage: "Store session credentials from a browser request (DevTools \"Copy as cURL\")",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from browser DevTools",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a file containing the cURL command",
					},
					&cli.StringFlag{
						Name:  "env-file",
						Usage: "Path of the .env file to write",
						Value: ".env",
					},
				},
				Action: r.SetupAuth,
			},
		},
	}
}
