package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/slok/xferctl/cmd/xferctl/commands"
	"github.com/slok/xferctl/internal/log"
	loglogrus "github.com/slok/xferctl/internal/log/logrus"
	"github.com/slok/xferctl/internal/metrics"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("xferctl", "Bulk file transfer orchestration between remote endpoints.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	transferCmd := commands.NewTransferCommand(rootCmd, app)
	submitCmd := commands.NewSubmitCommand(rootCmd, app)
	waitCmd := commands.NewWaitCommand(rootCmd, app)
	tasksCmd := commands.NewTasksCommand(rootCmd, app)
	mkdirCmd := commands.NewMkdirCommand(rootCmd, app)
	lsCmd := commands.NewLsCommand(rootCmd, app)
	endpointsCmd := commands.NewEndpointsCommand(rootCmd, app)
	activateCmd := commands.NewActivateCommand(rootCmd, app)
	historyCmd := commands.NewHistoryCommand(rootCmd, app)

	cmds := map[string]commands.Command{
		transferCmd.Name():  transferCmd,
		submitCmd.Name():    submitCmd,
		waitCmd.Name():      waitCmd,
		tasksCmd.Name():     tasksCmd,
		mkdirCmd.Name():     mkdirCmd,
		lsCmd.Name():        lsCmd,
		endpointsCmd.Name(): endpointsCmd,
		activateCmd.Name():  activateCmd,
		historyCmd.Name():   historyCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands that only print data don't log unless debugging.
	printerCommands := map[string]bool{
		"tasks":     true,
		"ls":        true,
		"endpoints": true,
		"history":   true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	// Set metrics.
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPrometheusRecorder(reg)
	if err != nil {
		return fmt.Errorf("could not create metrics recorder: %w", err)
	}
	rootCmd.MetricsRecorder = rec
	if rootCmd.MetricsTextfile != "" {
		defer func() {
			if merr := metrics.WriteToTextfile(rootCmd.MetricsTextfile, reg); merr != nil {
				rootCmd.Logger.Errorf("Could not write metrics: %s", merr)
			}
		}()
	}

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Logs go to stderr so stdout only has the printed output.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
