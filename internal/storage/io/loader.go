package io

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/slok/xferctl/internal/log"
)

// EndpointsYAMLRepository loads the endpoint name to UUID mapping from YAML files.
//
// The file is a flat mapping, e.g.:
//
//	glade: d33b3614-6d04-11e5-ba46-22000b92c6ec
//	campaign: 6b5ab960-7bbf-11e8-9450-0a6d4e044368
type EndpointsYAMLRepository struct {
	fs     fs.FS
	logger log.Logger
}

// NewEndpointsYAMLRepository creates a new YAML endpoints repository.
func NewEndpointsYAMLRepository(filesystem fs.FS, logger log.Logger) *EndpointsYAMLRepository {
	if logger == nil {
		logger = log.Noop
	}

	return &EndpointsYAMLRepository{
		fs:     filesystem,
		logger: logger.WithValues(log.Kv{"svc": "storage.EndpointsYAML"}),
	}
}

// GetEndpoints loads the endpoints from a YAML file.
func (r *EndpointsYAMLRepository) GetEndpoints(ctx context.Context, path string) (map[string]string, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading endpoints file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var endpoints map[string]string
	if err := yaml.Unmarshal(data, &endpoints); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := r.validate(endpoints); err != nil {
		return nil, fmt.Errorf("invalid endpoints: %w", err)
	}

	r.logger.Debugf("Loaded %d endpoints from %s", len(endpoints), path)

	if endpoints == nil {
		endpoints = map[string]string{}
	}
	return endpoints, nil
}

func (r *EndpointsYAMLRepository) validate(endpoints map[string]string) error {
	for name, id := range endpoints {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("endpoint name can't be empty")
		}
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("endpoint %q UUID can't be empty", name)
		}

		// The transfer service is the one that knows the valid identifiers, we only warn.
		if _, err := uuid.Parse(id); err != nil {
			r.logger.Warningf("Endpoint %q identifier %q doesn't look like a UUID", name, id)
		}
	}

	return nil
}
