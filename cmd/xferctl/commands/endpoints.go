package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type EndpointsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewEndpointsCommand returns the endpoints command.
func NewEndpointsCommand(rootCmd *RootCommand, app *kingpin.Application) *EndpointsCommand {
	c := &EndpointsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("endpoints", "List the known endpoints.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c EndpointsCommand) Name() string { return c.Cmd.FullCommand() }

func (c EndpointsCommand) Run(ctx context.Context) error {
	endpoints, err := c.rootCmd.newEndpointRegistry(ctx)
	if err != nil {
		return err
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintEndpoints(endpoints.Endpoints()); err != nil {
		return fmt.Errorf("could not print endpoints: %w", err)
	}

	return nil
}
