package model

import "fmt"

// Endpoint is a named remote storage location reachable through the transfer service.
type Endpoint struct {
	Name string
	UUID string
}

// EndpointPath is a path on a specific endpoint.
type EndpointPath struct {
	UUID string
	Path string
}

// String returns the path notation understood by the transfer service (`UUID:path`).
func (e EndpointPath) String() string {
	if e.Path == "" {
		return e.UUID
	}
	return fmt.Sprintf("%s:%s", e.UUID, e.Path)
}
