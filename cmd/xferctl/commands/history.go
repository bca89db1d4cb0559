package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/xferctl/internal/app/history"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	runID  string
	limit  int
	format string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "Show the transfer journal, or a single run with its attempts.")
	c.Cmd.Arg("run-id", "Transfer run ID.").StringVar(&c.runID)
	c.Cmd.Flag("limit", "Maximum number of runs listed, all when negative.").Default(fmt.Sprint(history.DefaultLimit)).IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.newJournal(ctx)
	if err != nil {
		return fmt.Errorf("could not create journal: %w", err)
	}
	defer repo.Close()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, history.Request{RunID: c.runID, Limit: c.limit})
	if err != nil {
		return fmt.Errorf("could not get history: %w", err)
	}

	p := newPrinter(c.format, c.rootCmd.Stdout)
	if c.runID != "" && len(res.Runs) == 1 {
		err = p.PrintRun(res.Runs[0], res.Attempts)
	} else {
		err = p.PrintHistory(res.Runs)
	}
	if err != nil {
		return fmt.Errorf("could not print history: %w", err)
	}

	return nil
}
