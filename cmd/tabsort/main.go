// tabsort is the CLI for the tabsortd daemon: trigger a sort, inspect
// status, print group-title suggestions, or watch organize events live.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/b/tabsort/pkg/daemon"
	"github.com/b/tabsort/pkg/paths"
	"github.com/b/tabsort/pkg/sorter"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "tabsort",
		Usage:   "organize browser tabs into a canonical order",
		Version: version,
		Commands: []*cli.Command{
			organizeCommand(),
			statusCommand(),
			suggestCommand(),
			watchCommand(),
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tabsort: %v\n", err)
		os.Exit(1)
	}
}

func dialDaemon() (*daemon.Client, error) {
	c, err := daemon.Dial(paths.SocketPath())
	if err != nil {
		return nil, fmt.Errorf("is tabsortd running? %w", err)
	}
	return c, nil
}

func organizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "organize",
		Usage: "sort the focused window's tabs",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "compute the order without moving tabs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := dialDaemon()
			if err != nil {
				return err
			}
			defer c.Close()

			dryRun := cmd.Bool("dry-run")
			var res sorter.Result
			if err := c.Request(daemon.MsgOrganize, daemon.OrganizePayload{DryRun: dryRun}, &res); err != nil {
				return err
			}
			printResult(os.Stdout, res, dryRun)
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show daemon and extension state",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := dialDaemon()
			if err != nil {
				return err
			}
			defer c.Close()

			var status daemon.StatusPayload
			if err := c.Request(daemon.MsgStatus, nil, &status); err != nil {
				return err
			}
			renderStatus(os.Stdout, status)
			return nil
		},
	}
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "suggest group titles for ungrouped tabs",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := dialDaemon()
			if err != nil {
				return err
			}
			defer c.Close()

			var out daemon.SuggestPayload
			if err := c.Request(daemon.MsgSuggest, nil, &out); err != nil {
				return err
			}
			if len(out.Suggestions) == 0 {
				fmt.Println("No clusters of related tabs found.")
				return nil
			}
			for _, s := range out.Suggestions {
				fmt.Printf("%-24s %s (%d tabs)\n", s.Title, s.Bucket, len(s.TabIDs))
			}
			return nil
		},
	}
}
