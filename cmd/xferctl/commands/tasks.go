package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/app/tasklist"
	"github.com/slok/xferctl/internal/model"
)

type TasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statuses []string
	format   string
}

// NewTasksCommand returns the tasks command.
func NewTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tasks", "List the transfer tasks of the transfer service.")
	c.Cmd.Flag("status", "Task status to list, repeatable (PENDING, ACTIVE, SUCCEEDED, FAILED, INACTIVE).").Default(string(model.TaskStatusActive)).StringsVar(&c.statuses)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c TasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksCommand) Run(ctx context.Context) error {
	statuses := make([]model.TaskStatus, 0, len(c.statuses))
	for _, s := range c.statuses {
		status, err := model.ParseTaskStatus(s)
		if err != nil {
			return err
		}
		statuses = append(statuses, status)
	}

	rc, err := c.rootCmd.newRemoteClient()
	if err != nil {
		return fmt.Errorf("could not create transfer service client: %w", err)
	}

	tasks, err := c.rootCmd.newTaskManager(rc)
	if err != nil {
		return fmt.Errorf("could not create task manager: %w", err)
	}

	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Tasks:  tasks,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	ts, err := svc.Run(ctx, tasklist.Request{Statuses: statuses})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTasks(ts); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
