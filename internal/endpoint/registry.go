// Package endpoint resolves the logical endpoint names used by the users into the
// identifiers understood by the transfer service.
package endpoint

import (
	"fmt"
	"sort"

	"github.com/slok/xferctl/internal/model"
)

// Registry is a read-only mapping of endpoint names to endpoint UUIDs.
type Registry struct {
	endpoints map[string]string
}

// NewRegistry returns a registry for the given name to UUID mapping. The
// mapping is copied, later changes on the received map are not visible.
func NewRegistry(endpoints map[string]string) *Registry {
	eps := make(map[string]string, len(endpoints))
	for name, id := range endpoints {
		eps[name] = id
	}

	return &Registry{endpoints: eps}
}

// Resolve returns the UUID of a named endpoint.
func (r *Registry) Resolve(name string) (string, error) {
	id, ok := r.endpoints[name]
	if !ok {
		return "", fmt.Errorf("endpoint %q: %w", name, model.ErrUnknownEndpoint)
	}

	return id, nil
}

// Endpoints returns all the registered endpoints sorted by name.
func (r *Registry) Endpoints() []model.Endpoint {
	eps := make([]model.Endpoint, 0, len(r.endpoints))
	for name, id := range r.endpoints {
		eps = append(eps, model.Endpoint{Name: name, UUID: id})
	}
	sort.Slice(eps, func(i, j int) bool { return eps[i].Name < eps[j].Name })

	return eps
}
