package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/app/activate"
)

type ActivateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	endpoint string
}

// NewActivateCommand returns the activate command.
func NewActivateCommand(rootCmd *RootCommand, app *kingpin.Application) *ActivateCommand {
	c := &ActivateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("activate", "Check an endpoint activation and start it when missing.")
	c.Cmd.Arg("endpoint", "Endpoint name.").Required().StringVar(&c.endpoint)

	return c
}

func (c ActivateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ActivateCommand) Run(ctx context.Context) error {
	endpoints, err := c.rootCmd.newEndpointRegistry(ctx)
	if err != nil {
		return err
	}

	rc, err := c.rootCmd.newRemoteClient()
	if err != nil {
		return fmt.Errorf("could not create transfer service client: %w", err)
	}

	svc, err := activate.NewService(activate.ServiceConfig{
		Endpoints: endpoints,
		Remote:    rc,
		Logger:    c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, activate.Request{Endpoint: c.endpoint})
	if err != nil {
		return fmt.Errorf("could not activate endpoint: %w", err)
	}

	msg := fmt.Sprintf("Endpoint %s (%s) is activated", c.endpoint, res.EndpointID)
	if !res.AlreadyActivated && res.Instructions != "" {
		msg = res.Instructions
	}

	if err := newPrinter(formatTable, c.rootCmd.Stdout).PrintMessage(msg); err != nil {
		return fmt.Errorf("could not print activation: %w", err)
	}

	return nil
}
