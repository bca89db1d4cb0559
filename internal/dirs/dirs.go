// Package dirs manages directories on the transfer service endpoints.
package dirs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/remote"
)

// EndpointResolver resolves endpoint names into endpoint UUIDs.
type EndpointResolver interface {
	Resolve(name string) (string, error)
}

// ManagerConfig is the configuration for the directory manager.
type ManagerConfig struct {
	Endpoints EndpointResolver
	Remote    remote.Client
	Logger    log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.Endpoints == nil {
		return fmt.Errorf("endpoints resolver is required")
	}
	if c.Remote == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "dirs.Manager"})
	return nil
}

// Manager manages remote endpoint directories. Listings are never cached, each
// operation queries the transfer service again.
type Manager struct {
	endpoints EndpointResolver
	remote    remote.Client
	logger    log.Logger
}

// NewManager creates a new directory manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		endpoints: cfg.Endpoints,
		remote:    cfg.Remote,
		logger:    cfg.Logger,
	}, nil
}

// EnsureDirectory creates the missing directories of a path on an endpoint, walking
// it from the root to the leaf.
//
// The walk is not transactional, a concurrent creator may make a creation fail.
// Creation errors are returned as they are, without distinguishing already existing
// directories.
func (m *Manager) EnsureDirectory(ctx context.Context, endpointName, dirPath string) error {
	endpointID, err := m.activeEndpoint(ctx, endpointName)
	if err != nil {
		return err
	}

	root, segments, err := splitPath(dirPath)
	if err != nil {
		return err
	}

	parent := root
	for _, segment := range segments {
		current := path.Join(parent, segment)

		entries, err := m.list(ctx, endpointID, parent)
		if err != nil {
			return err
		}

		if !slices.Contains(entries, segment) {
			m.logger.Infof("mkdir: %s", current)
			if err := m.remote.CreateDirectory(ctx, endpointID, current); err != nil {
				return fmt.Errorf("could not create directory %s on %s: %w", current, endpointName, err)
			}
		}

		parent = current
	}

	return nil
}

// List returns the sorted entry names of a directory, optionally filtered.
func (m *Manager) List(ctx context.Context, endpointName, dirPath, filter string) ([]string, error) {
	endpointID, err := m.activeEndpoint(ctx, endpointName)
	if err != nil {
		return nil, err
	}

	entries, err := m.remote.ListDirectory(ctx, endpointID, dirPath, filter)
	if err != nil {
		return nil, fmt.Errorf("could not list %s on %s: %w", dirPath, endpointName, err)
	}
	slices.Sort(entries)

	return entries, nil
}

func (m *Manager) activeEndpoint(ctx context.Context, endpointName string) (string, error) {
	endpointID, err := m.endpoints.Resolve(endpointName)
	if err != nil {
		return "", err
	}

	ok, err := m.remote.IsActivated(ctx, endpointID)
	if err != nil {
		return "", fmt.Errorf("could not check endpoint %s activation: %w", endpointName, err)
	}
	if !ok {
		return "", fmt.Errorf("endpoint %s: %w", endpointName, model.ErrEndpointNotActivated)
	}

	return endpointID, nil
}

// list lists a directory, a directory that can't be listed is considered empty.
func (m *Manager) list(ctx context.Context, endpointID, dirPath string) ([]string, error) {
	entries, err := m.remote.ListDirectory(ctx, endpointID, dirPath, "")
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not list %s: %w", dirPath, err)
	}

	return entries, nil
}

// splitPath splits a remote path into its root and the segments under it. Absolute
// paths use `/` as root, relative ones (e.g `~/data`) use their first segment.
func splitPath(p string) (root string, segments []string, err error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", nil, fmt.Errorf("path can't be empty: %w", model.ErrNotValid)
	}

	p = path.Clean(p)
	if strings.HasPrefix(p, "/") {
		if p == "/" {
			return "/", nil, nil
		}
		return "/", strings.Split(p[1:], "/"), nil
	}

	parts := strings.Split(p, "/")
	return parts[0], parts[1:], nil
}
