package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/slok/xferctl/internal/endpoint"
	"github.com/slok/xferctl/internal/printer"
	"github.com/slok/xferctl/internal/remote"
	"github.com/slok/xferctl/internal/remote/fake"
	"github.com/slok/xferctl/internal/remote/globuscli"
	"github.com/slok/xferctl/internal/scratch"
	storageio "github.com/slok/xferctl/internal/storage/io"
	"github.com/slok/xferctl/internal/storage/sqlite"
	"github.com/slok/xferctl/internal/task"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func (r *RootCommand) newEndpointRegistry(ctx context.Context) (*endpoint.Registry, error) {
	path, err := filepath.Abs(r.EndpointsFile)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoints file path: %w", err)
	}

	// The loader works with fs.FS paths, those are relative to the root.
	repo := storageio.NewEndpointsYAMLRepository(os.DirFS("/"), r.Logger)
	eps, err := repo.GetEndpoints(ctx, path[1:])
	if err != nil {
		return nil, fmt.Errorf("could not load endpoints from %s: %w", r.EndpointsFile, err)
	}

	return endpoint.NewRegistry(eps), nil
}

func (r *RootCommand) newRemoteClient() (remote.Client, error) {
	switch r.Backend {
	case BackendFake:
		r.Logger.Warningf("Using the fake transfer service, nothing will be transferred")
		return fake.NewService(fake.ServiceConfig{Logger: r.Logger})
	default:
		return globuscli.NewClient(globuscli.ClientConfig{
			Program: r.GlobusBin,
			Logger:  r.Logger,
		})
	}
}

func (r *RootCommand) newScratchStore() (*scratch.Store, error) {
	dir := r.ScratchDir
	if dir == "" {
		dir = scratch.DefaultDir(r.Logger)
	}

	return scratch.NewStore(scratch.StoreConfig{Dir: dir, Logger: r.Logger})
}

func (r *RootCommand) newJournal(ctx context.Context) (*sqlite.Repository, error) {
	return sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
}

func (r *RootCommand) newTaskManager(rc remote.Client) (*task.Manager, error) {
	store, err := r.newScratchStore()
	if err != nil {
		return nil, fmt.Errorf("could not create scratch store: %w", err)
	}

	return task.NewManager(task.ManagerConfig{
		Remote:    rc,
		Snapshots: store,
		Logger:    r.Logger,
	})
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}
