package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/admission"
	"github.com/slok/xferctl/internal/app/transfer"
)

type TransferCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	srcEndpoint string
	dstEndpoint string
	srcPaths    string
	dstPaths    string
	batchFile   string
	retry       int
	label       string
	ceiling     int
	format      string
}

// NewTransferCommand returns the transfer command.
func NewTransferCommand(rootCmd *RootCommand, app *kingpin.Application) *TransferCommand {
	c := &TransferCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("transfer", "Transfer files between endpoints and wait for the result, retrying failed transfers.")
	c.Cmd.Flag("src-ep", "Source endpoint name.").Required().StringVar(&c.srcEndpoint)
	c.Cmd.Flag("dst-ep", "Destination endpoint name.").Required().StringVar(&c.dstEndpoint)
	c.Cmd.Flag("src-paths", "Comma separated source paths.").StringVar(&c.srcPaths)
	c.Cmd.Flag("dst-paths", "Comma separated destination paths, paired with the source paths in order.").StringVar(&c.dstPaths)
	c.Cmd.Flag("batch-file", "Batch file with a `[--option]... {source} {destination}` line per transfer, shell quoted, replaces the path lists.").StringVar(&c.batchFile)
	c.Cmd.Flag("retry", "Maximum number of transfer attempts, at least 1.").Default(fmt.Sprint(transfer.DefaultRetryLimit)).IntVar(&c.retry)
	c.Cmd.Flag("label", "Transfer task label.").StringVar(&c.label)
	c.Cmd.Flag("ceiling", "Maximum active tasks on the transfer service before submitting.").Default(fmt.Sprint(admission.DefaultCeiling)).IntVar(&c.ceiling)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c TransferCommand) Name() string { return c.Cmd.FullCommand() }

func (c TransferCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.batchFile == "" && (c.srcPaths == "" || c.dstPaths == "") {
		return fmt.Errorf("source and destination paths or a batch file are required")
	}
	if c.batchFile != "" && (c.srcPaths != "" || c.dstPaths != "") {
		return fmt.Errorf("batch file and path lists can't be used at the same time")
	}
	if c.retry < 1 {
		return fmt.Errorf("retry must be at least 1, got %d", c.retry)
	}

	endpoints, err := c.rootCmd.newEndpointRegistry(ctx)
	if err != nil {
		return err
	}

	rc, err := c.rootCmd.newRemoteClient()
	if err != nil {
		return fmt.Errorf("could not create transfer service client: %w", err)
	}

	store, err := c.rootCmd.newScratchStore()
	if err != nil {
		return fmt.Errorf("could not create scratch store: %w", err)
	}

	repo, err := c.rootCmd.newJournal(ctx)
	if err != nil {
		return fmt.Errorf("could not create journal: %w", err)
	}
	defer repo.Close()

	tasks, err := c.rootCmd.newTaskManager(rc)
	if err != nil {
		return fmt.Errorf("could not create task manager: %w", err)
	}

	ctrl, err := admission.NewController(admission.ControllerConfig{
		Tasks:           tasks,
		MetricsRecorder: c.rootCmd.MetricsRecorder,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("could not create admission controller: %w", err)
	}

	svc, err := transfer.NewService(transfer.ServiceConfig{
		Endpoints:       endpoints,
		Throttler:       ctrl,
		Tasks:           tasks,
		Scratch:         store,
		Repository:      repo,
		Ceiling:         c.ceiling,
		MetricsRecorder: c.rootCmd.MetricsRecorder,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, transfer.Request{
		SourceEndpoint:      c.srcEndpoint,
		DestinationEndpoint: c.dstEndpoint,
		SourcePaths:         splitList(c.srcPaths),
		DestinationPaths:    splitList(c.dstPaths),
		ManifestPath:        c.batchFile,
		RetryLimit:          c.retry,
		Label:               c.label,
	})
	if err != nil {
		return fmt.Errorf("could not transfer: %w", err)
	}

	run, err := repo.GetTransferRun(ctx, res.RunID)
	if err != nil {
		logger.Warningf("Could not read the transfer run from the journal: %s", err)
	} else {
		attempts, err := repo.ListTransferAttempts(ctx, res.RunID)
		if err != nil {
			logger.Warningf("Could not read the transfer attempts from the journal: %s", err)
		}
		if err := newPrinter(c.format, c.rootCmd.Stdout).PrintRun(*run, attempts); err != nil {
			return fmt.Errorf("could not print transfer: %w", err)
		}
	}

	if !res.Succeeded {
		for _, s := range res.FailureSnapshots {
			logger.Infof("Failure details: %s", s)
		}
		return fmt.Errorf("%d attempts made: %w", res.Attempts, ErrTransferFailed)
	}

	return nil
}

// splitList splits comma separated lists, ignoring empty items.
func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
