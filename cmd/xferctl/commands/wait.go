package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/model"
)

type WaitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewWaitCommand returns the wait command.
func NewWaitCommand(rootCmd *RootCommand, app *kingpin.Application) *WaitCommand {
	c := &WaitCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("wait", "Wait until a transfer task finishes.")
	c.Cmd.Arg("task-id", "Transfer task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c WaitCommand) Name() string { return c.Cmd.FullCommand() }

func (c WaitCommand) Run(ctx context.Context) error {
	rc, err := c.rootCmd.newRemoteClient()
	if err != nil {
		return fmt.Errorf("could not create transfer service client: %w", err)
	}

	tasks, err := c.rootCmd.newTaskManager(rc)
	if err != nil {
		return fmt.Errorf("could not create task manager: %w", err)
	}

	t := &model.Task{ID: c.taskID, Status: model.TaskStatusActive}
	ok, err := tasks.AwaitCompletion(ctx, t)
	if err != nil {
		return fmt.Errorf("could not wait for task: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTask(*t); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	if !ok {
		return fmt.Errorf("task %s ended with %s status: %w", t.ID, t.Status, ErrTransferFailed)
	}

	return nil
}
