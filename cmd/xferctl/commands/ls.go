package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/app/list"
)

type LsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	endpoint string
	path     string
	filter   string
	format   string
}

// NewLsCommand returns the ls command.
func NewLsCommand(rootCmd *RootCommand, app *kingpin.Application) *LsCommand {
	c := &LsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("ls", "List a directory on an endpoint.")
	c.Cmd.Arg("endpoint", "Endpoint name.").Required().StringVar(&c.endpoint)
	c.Cmd.Arg("path", "Directory path.").Default("~").StringVar(&c.path)
	c.Cmd.Flag("filter", "Entry name filter (`=` exact, `~` pattern, `!` negates).").StringVar(&c.filter)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c LsCommand) Name() string { return c.Cmd.FullCommand() }

func (c LsCommand) Run(ctx context.Context) error {
	d, err := c.rootCmd.newDirectoryManager(ctx)
	if err != nil {
		return err
	}

	svc, err := list.NewService(list.ServiceConfig{
		Directories: d,
		Logger:      c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	entries, err := svc.Run(ctx, list.Request{
		Endpoint: c.endpoint,
		Path:     c.path,
		Filter:   c.filter,
	})
	if err != nil {
		return fmt.Errorf("could not list directory: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintListing(entries); err != nil {
		return fmt.Errorf("could not print listing: %w", err)
	}

	return nil
}
