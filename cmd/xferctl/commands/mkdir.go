package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/app/mkdir"
	"github.com/slok/xferctl/internal/dirs"
)

type MkdirCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	endpoint string
	paths    []string
}

// NewMkdirCommand returns the mkdir command.
func NewMkdirCommand(rootCmd *RootCommand, app *kingpin.Application) *MkdirCommand {
	c := &MkdirCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("mkdir", "Ensure directories exist on an endpoint, creating missing parents.")
	c.Cmd.Arg("endpoint", "Endpoint name.").Required().StringVar(&c.endpoint)
	c.Cmd.Arg("paths", "Directory paths.").Required().StringsVar(&c.paths)

	return c
}

func (c MkdirCommand) Name() string { return c.Cmd.FullCommand() }

func (c MkdirCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	d, err := c.rootCmd.newDirectoryManager(ctx)
	if err != nil {
		return err
	}

	svc, err := mkdir.NewService(mkdir.ServiceConfig{
		Directories: d,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, mkdir.Request{Endpoint: c.endpoint, Paths: c.paths}); err != nil {
		return fmt.Errorf("could not ensure directories: %w", err)
	}

	return nil
}

func (r *RootCommand) newDirectoryManager(ctx context.Context) (*dirs.Manager, error) {
	endpoints, err := r.newEndpointRegistry(ctx)
	if err != nil {
		return nil, err
	}

	rc, err := r.newRemoteClient()
	if err != nil {
		return nil, fmt.Errorf("could not create transfer service client: %w", err)
	}

	d, err := dirs.NewManager(dirs.ManagerConfig{
		Endpoints: endpoints,
		Remote:    rc,
		Logger:    r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create directory manager: %w", err)
	}

	return d, nil
}
