package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/scratch"
)

type SubmitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	srcEndpoint string
	dstEndpoint string
	srcPath     string
	dstPath     string
	batchFile   string
	label       string
	format      string
}

// NewSubmitCommand returns the submit command.
func NewSubmitCommand(rootCmd *RootCommand, app *kingpin.Application) *SubmitCommand {
	c := &SubmitCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("submit", "Submit a transfer task without waiting for it.")
	c.Cmd.Flag("src-ep", "Source endpoint name.").Required().StringVar(&c.srcEndpoint)
	c.Cmd.Flag("dst-ep", "Destination endpoint name.").Required().StringVar(&c.dstEndpoint)
	c.Cmd.Flag("src-path", "Source path.").StringVar(&c.srcPath)
	c.Cmd.Flag("dst-path", "Destination path.").StringVar(&c.dstPath)
	c.Cmd.Flag("batch-file", "Batch file with a `{source} {destination}` line per transfer.").StringVar(&c.batchFile)
	c.Cmd.Flag("label", "Transfer task label.").StringVar(&c.label)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c SubmitCommand) Name() string { return c.Cmd.FullCommand() }

func (c SubmitCommand) Run(ctx context.Context) error {
	if c.batchFile == "" && (c.srcPath == "" || c.dstPath == "") {
		return fmt.Errorf("source and destination paths or a batch file are required")
	}
	if c.batchFile != "" {
		if _, err := scratch.ReadManifest(c.batchFile); err != nil {
			return fmt.Errorf("invalid batch file: %w", err)
		}
	}

	endpoints, err := c.rootCmd.newEndpointRegistry(ctx)
	if err != nil {
		return err
	}
	srcID, err := endpoints.Resolve(c.srcEndpoint)
	if err != nil {
		return fmt.Errorf("could not resolve source endpoint: %w", err)
	}
	dstID, err := endpoints.Resolve(c.dstEndpoint)
	if err != nil {
		return fmt.Errorf("could not resolve destination endpoint: %w", err)
	}

	rc, err := c.rootCmd.newRemoteClient()
	if err != nil {
		return fmt.Errorf("could not create transfer service client: %w", err)
	}

	tasks, err := c.rootCmd.newTaskManager(rc)
	if err != nil {
		return fmt.Errorf("could not create task manager: %w", err)
	}

	t, err := tasks.SubmitAsync(ctx, model.TransferRequest{
		Source:       model.EndpointPath{UUID: srcID, Path: c.srcPath},
		Destination:  model.EndpointPath{UUID: dstID, Path: c.dstPath},
		ManifestPath: c.batchFile,
		Label:        c.label,
	})
	if err != nil {
		return fmt.Errorf("could not submit transfer: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTask(*t); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
