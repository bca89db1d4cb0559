package commands

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/xferctl/internal/conventions"
	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/metrics"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	// BackendGlobus uses the globus CLI as the transfer service.
	BackendGlobus = "globus"
	// BackendFake uses an in-memory transfer service, nothing is transferred.
	BackendFake = "fake"
)

// ErrTransferFailed is returned when a transfer ends without success after all its
// attempts, the process exits with a failure status.
var ErrTransferFailed = errors.New("transfer failed")

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug           bool
	NoLog           bool
	NoColor         bool
	LoggerType      string
	EndpointsFile   string
	ScratchDir      string
	DBPath          string
	Backend         string
	GlobusBin       string
	MetricsTextfile string

	// Global instances.
	Stdin           io.Reader
	Stdout          io.Writer
	Stderr          io.Writer
	Logger          log.Logger
	MetricsRecorder metrics.Recorder
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	dataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("endpoints-file", "YAML file with the endpoint name to UUID mapping.").Default(conventions.EndpointsFilePath(dataDir)).StringVar(&c.EndpointsFile)
	app.Flag("scratch-dir", "Directory for task snapshots and manifests (defaults to $TMPDIR or /tmp).").StringVar(&c.ScratchDir)
	app.Flag("db-path", "Path to the transfer journal SQLite database.").Default(conventions.DBFilePath(dataDir)).StringVar(&c.DBPath)
	app.Flag("backend", "Transfer service backend.").Default(BackendGlobus).EnumVar(&c.Backend, BackendGlobus, BackendFake)
	app.Flag("globus-bin", "Path to the globus CLI binary.").Default("globus").StringVar(&c.GlobusBin)
	app.Flag("metrics-textfile", "Write the metrics on this file (node exporter textfile format) when finished.").StringVar(&c.MetricsTextfile)

	return c
}
